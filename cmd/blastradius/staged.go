package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"blastradius/internal/export"
	"blastradius/internal/project"
)

var stagedYAMLOut string

var stagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Compute the blast radius of the VCS staging area",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := project.Open(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		result, err := p.AnalyzeStaged(context.Background())
		if err != nil {
			return err
		}
		if result == nil {
			return nil // superseded by a newer analysis
		}
		if stagedYAMLOut != "" {
			if err := export.WriteResultYAML(stagedYAMLOut, result); err != nil {
				return err
			}
		}
		out, err := formatResult(result, outputFormat())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	stagedCmd.Flags().StringVar(&stagedYAMLOut, "yaml", "", "Also write the result as YAML to this path")
	rootCmd.AddCommand(stagedCmd)
}
