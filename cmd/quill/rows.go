package main

import (
	"fmt"
	"strings"

	"github.com/cuemby/quill/pkg/catalog"
	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/engine"
	"github.com/cuemby/quill/pkg/statement"
	"github.com/spf13/cobra"
)

var whereExpr string
var setField string
var setLiteral string

var insertCmd = &cobra.Command{
	Use:   "insert <table> <value>...",
	Short: "Insert one row; values are positional and match the table's field order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := engine.Open(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		table := e.Catalog().Table(args[0])
		if table == nil {
			return dberrors.Logical(dberrors.ErrTableNotFound, args[0])
		}
		literals := args[1:]
		if len(literals) != len(table.Fields) {
			return fmt.Errorf("table %s has %d fields, got %d values", args[0], len(table.Fields), len(literals))
		}

		values := make([]catalog.Value, len(literals))
		for i, f := range table.Fields {
			v, err := parseValue(f.Type, literals[i])
			if err != nil {
				return err
			}
			values[i] = v
		}

		if _, err := e.NewExecutor().Execute(statement.Insert(args[0], values)); err != nil {
			return err
		}
		fmt.Println("1 row inserted")
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <table>",
	Short: "Select rows; --where field:op:literal (op is =, <, or >)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := engine.Open(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		table := e.Catalog().Table(args[0])
		if table == nil {
			return dberrors.Logical(dberrors.ErrTableNotFound, args[0])
		}

		where, err := resolveWhere(table, whereExpr)
		if err != nil {
			return err
		}

		res, err := e.NewExecutor().Execute(statement.Select(args[0], where))
		if err != nil {
			return err
		}
		for _, row := range res.Rows {
			parts := make([]string, len(row))
			for i, v := range row {
				parts[i] = formatValue(v)
			}
			fmt.Println(strings.Join(parts, ", "))
		}
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <table>",
	Short: "Update rows: --set-field field --set-value literal --where field:op:literal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := engine.Open(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		table := e.Catalog().Table(args[0])
		if table == nil {
			return dberrors.Logical(dberrors.ErrTableNotFound, args[0])
		}

		field := table.Field(setField)
		if field == nil {
			return dberrors.Logical(dberrors.ErrFieldNotFound, setField)
		}
		setValue, err := parseValue(field.Type, setLiteral)
		if err != nil {
			return err
		}

		where, err := resolveWhere(table, whereExpr)
		if err != nil {
			return err
		}

		res, err := e.NewExecutor().Execute(statement.Update(args[0], setField, setValue, where))
		if err != nil {
			return err
		}
		fmt.Printf("%d row(s) updated\n", res.Affected)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <table>",
	Short: "Delete rows: --where field:op:literal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := engine.Open(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		table := e.Catalog().Table(args[0])
		if table == nil {
			return dberrors.Logical(dberrors.ErrTableNotFound, args[0])
		}

		where, err := resolveWhere(table, whereExpr)
		if err != nil {
			return err
		}

		res, err := e.NewExecutor().Execute(statement.Delete(args[0], where))
		if err != nil {
			return err
		}
		fmt.Printf("%d row(s) deleted\n", res.Affected)
		return nil
	},
}

func resolveWhere(table *catalog.Table, expr string) (*catalog.Where, error) {
	if expr == "" {
		return nil, nil
	}
	return parseWhere(func(name string) (catalog.FieldType, bool) {
		f := table.Field(name)
		if f == nil {
			return 0, false
		}
		return f.Type, true
	}, expr)
}

func init() {
	selectCmd.Flags().StringVar(&whereExpr, "where", "", "field:op:literal")
	updateCmd.Flags().StringVar(&whereExpr, "where", "", "field:op:literal")
	updateCmd.Flags().StringVar(&setField, "set-field", "", "field name to update")
	updateCmd.Flags().StringVar(&setLiteral, "set-value", "", "new literal value")
	deleteCmd.Flags().StringVar(&whereExpr, "where", "", "field:op:literal")
}
