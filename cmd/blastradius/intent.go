package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"blastradius/internal/errors"
	"blastradius/internal/project"
)

var intentCmd = &cobra.Command{
	Use:   "intent \"<change description>\"",
	Short: "Predict the blast radius of a described change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := project.Open(context.Background(), cfg, logger)
		if err != nil {
			return err
		}

		// Ctrl-C cancels the oracle call; nothing else is cancellable.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		prompt := strings.Join(args, " ")
		outcome, err := p.AnalyzeIntent(ctx, prompt)
		if err != nil {
			var parseErr *errors.IntentParseError
			if stderrors.As(err, &parseErr) {
				fmt.Fprintf(os.Stderr, "could not interpret the prompt: %s\n", parseErr.Reason)
				return nil
			}
			return err
		}
		out, err := formatOutcome(outcome, outputFormat())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(intentCmd)
}
