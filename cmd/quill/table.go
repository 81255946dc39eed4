package main

import (
	"fmt"

	"github.com/cuemby/quill/pkg/catalog"
	"github.com/cuemby/quill/pkg/engine"
	"github.com/cuemby/quill/pkg/statement"
	"github.com/spf13/cobra"
)

var createFieldSpecs []string

var createCmd = &cobra.Command{
	Use:   "create <table>",
	Short: "Create a table: --field name:type[:index] (type is int32, int64, or string)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs := make([]catalog.FieldDef, 0, len(createFieldSpecs))
		for _, spec := range createFieldSpecs {
			def, err := parseFieldDef(spec)
			if err != nil {
				return err
			}
			defs = append(defs, def)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := engine.Open(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		if _, err := e.NewExecutor().Execute(statement.Create(args[0], defs)); err != nil {
			return err
		}
		fmt.Printf("table %s created\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().StringArrayVar(&createFieldSpecs, "field", nil, "field definition, repeatable")
}
