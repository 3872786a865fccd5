package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"blastradius/internal/cache"
	"blastradius/internal/export"
	"blastradius/internal/project"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the symbol index and graph as a SCIP index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := project.Open(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		out := exportOut
		if out == "" {
			out = filepath.Join(cfg.ProjectRoot, "index.scip")
		}
		if err := export.WriteSCIP(out, cfg.ProjectRoot, cache.Version, p.Index(), p.Graph()); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d symbols)\n", out, p.Index().Len())
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default: index.scip)")
	rootCmd.AddCommand(exportCmd)
}
