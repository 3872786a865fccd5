package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"blastradius/internal/errors"
	"blastradius/internal/project"
)

var shallowFlag bool

var impactCmd = &cobra.Command{
	Use:   "impact <symbolId>",
	Short: "Traverse the blast radius of a single symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := project.Open(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		id := args[0]
		if !p.Index().Has(id) {
			return errors.New(errors.SymbolNotFound, "symbol is not indexed").
				WithDetails(map[string]string{"symbolId": id})
		}
		result := p.ImpactOf(id, !shallowFlag)
		out, err := formatResult(result, outputFormat())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	impactCmd.Flags().BoolVar(&shallowFlag, "shallow", false,
		"Expand one hop only instead of the full transitive closure")
	rootCmd.AddCommand(impactCmd)
}
