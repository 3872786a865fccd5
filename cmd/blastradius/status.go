package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"blastradius/internal/cache"
)

// statusResponse summarizes cache state without loading the full project
type statusResponse struct {
	CacheDir    string `json:"cacheDir"`
	HasCache    bool   `json:"hasCache"`
	ProjectHash string `json:"projectHash,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	Version     string `json:"version,omitempty"`
	Current     bool   `json:"projectConfigCurrent"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache state for the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		c := cache.New(cfg.CacheDir(), logger)
		meta := c.LoadMetadata()

		resp := statusResponse{CacheDir: cfg.CacheDir()}
		if meta != nil {
			resp.HasCache = true
			resp.ProjectHash = meta.ProjectHash
			resp.CreatedAt = meta.CreatedAt
			resp.Version = meta.Version
			resp.Current = meta.ProjectHash == cache.ProjectHash(cfg.ProjectConfigPath())
		}

		if outputFormat() == FormatJSON {
			data, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		if !resp.HasCache {
			fmt.Println("no cache; run `blastradius index`")
			return nil
		}
		fmt.Printf("cache: %s\ncreated: %s\nversion: %s\nproject config current: %v\n",
			resp.CacheDir, resp.CreatedAt, resp.Version, resp.Current)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
