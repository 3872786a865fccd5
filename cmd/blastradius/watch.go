package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"blastradius/internal/project"
	"blastradius/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and print blast radii as files change",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := project.Open(context.Background(), cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w := watcher.New(cfg.ProjectRoot, cfg.Indexing.Extensions, 500*time.Millisecond, logger,
			func(events []watcher.Event) {
				for _, ev := range events {
					handleWatchEvent(ctx, p, ev)
				}
				if err := p.Save(); err != nil {
					logger.Warn("cache save failed", map[string]interface{}{"error": err.Error()})
				}
			})

		logger.Info("watching", map[string]interface{}{"root": cfg.ProjectRoot})
		err = w.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	},
}

func handleWatchEvent(ctx context.Context, p *project.Project, ev watcher.Event) {
	if ev.Kind == watcher.Removed {
		p.RemoveFile(ev.Path)
		return
	}
	result, report, err := p.AnalyzeEditor(ctx, ev.Path, nil)
	if err != nil || result == nil {
		return
	}
	if report.Empty() || (len(result.Roots) == 0) {
		return
	}
	out, err := formatResult(result, outputFormat())
	if err != nil {
		return
	}
	fmt.Printf("-- %s --\n%s", ev.Path, out)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
