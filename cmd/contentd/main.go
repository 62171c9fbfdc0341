package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/contentd/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "contentd",
	Short:   "Serve file and directory content over HTTP",
	Long: `contentd resolves a query parameter to a path under a configured root
directory and returns the file's text, or the concatenated text of the
regular files in a directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable; later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "content root directory (default: ./data, env: CONTENTD_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("extension", "", "extension appended to every identifier, e.g. .txt (env: CONTENTD_STORAGE_EXTENSION)")
	rootCmd.PersistentFlags().String("param", "", "query parameter holding the identifier (default: param)")
	rootCmd.PersistentFlags().String("default", "", "identifier used when the parameter is absent (default: default)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json (default: text)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
