package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/contentd"
	"github.com/sagarc03/contentd/config"
)

var getCmd = &cobra.Command{
	Use:   "get [identifier]",
	Short: "Resolve an identifier and print its content",
	Long: `Resolve an identifier exactly as GET /download?param=<identifier> would
and print the result to stdout. Without an argument the configured default
identifier is used. The command fails with the internal failure category
(not_found, permission, read, decode, outside_root) that the HTTP surface
hides behind a 404.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	service, closeService, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeService()

	value := cfg.Download.Default
	if len(args) == 1 {
		value = args[0]
	}

	content, err := service.Fetch(cmd.Context(), value)
	if err != nil {
		return fmt.Errorf("get %q: %s: %w", value, contentd.Reason(err), err)
	}

	if _, err := cmd.OutOrStdout().Write(content.Body); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
