package main

import (
	"fmt"

	"github.com/cuemby/quill/pkg/engine"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the database, run recovery if needed, then close cleanly",
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

		if e.Recovered {
			fmt.Println("opened after an unclean shutdown: recovery ran")
		} else {
			fmt.Println("opened cleanly")
		}
		return nil
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Force an open/close cycle to surface whether recovery would run",
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

		if e.Recovered {
			fmt.Println("recovery ran")
		} else {
			fmt.Println("no recovery was needed")
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List tables in the catalog",
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

		res, err := e.NewExecutor().Execute(showStatement())
		if err != nil {
			return err
		}
		for _, name := range res.Tables {
			fmt.Println(name)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print basic engine stats",
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

		res, err := e.NewExecutor().Execute(showStatement())
		if err != nil {
			return err
		}
		fmt.Printf("data directory: %s\n", cfg.DataDir)
		fmt.Printf("tables: %d\n", len(res.Tables))
		fmt.Printf("recovered on open: %v\n", e.Recovered)
		return nil
	},
}
