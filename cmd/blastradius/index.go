package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"blastradius/internal/project"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the symbol index and dependency graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := project.Open(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d symbols, %d edges\n", p.Index().Len(), p.Graph().EdgeCount())
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Force a full rebuild, ignoring the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := project.Open(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		if err := p.Rebuild(context.Background()); err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Printf("rebuilt %d symbols, %d edges\n", p.Index().Len(), p.Graph().EdgeCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(rebuildCmd)
}
