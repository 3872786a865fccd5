package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"blastradius/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default blastradius.toml in the project root",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := projectFlag
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			root = wd
		}
		path := filepath.Join(root, config.ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		cfg := config.Default(root)
		cfg.ProjectRoot = "" // the root comes from the invocation, not the file
		data, err := toml.Marshal(cfg)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
