package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/contentd/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after defaults, config files, environment
variables and flags have been applied.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long: `Create a config file interactively.

You will be prompted for:
  - Content root directory
  - Extension appended to identifiers
  - Server port
  - Log level

Values not prompted for are taken from the effective configuration.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().StringP("output", "o", "config.yaml", "file to write")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file without asking")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	return writeYAML(cmd.OutOrStdout(), cfg)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if _, statErr := os.Stat(output); statErr == nil && !force {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", output),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil //nolint:nilerr // User declined, not an error
		}
	}

	out := *cfg

	rootPrompt := promptui.Prompt{
		Label:    "Content root directory",
		Default:  out.Storage.Path,
		Validate: validateDir,
	}
	out.Storage.Path, err = rootPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	extPrompt := promptui.Prompt{
		Label:     "Extension appended to identifiers (empty for none)",
		Default:   out.Storage.Extension,
		AllowEdit: true,
		Validate:  validateExtension,
	}
	out.Storage.Extension, err = extPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	portPrompt := promptui.Prompt{
		Label:    "Server port",
		Default:  strconv.Itoa(out.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	out.Server.Port, _ = strconv.Atoi(portStr)

	levels := []string{"debug", "info", "warn", "error"}
	levelSelect := promptui.Select{
		Label:     "Log level",
		Items:     levels,
		CursorPos: indexOf(levels, out.Log.Level),
	}
	_, out.Log.Level, err = levelSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer func() { _ = f.Close() }()

	if err := writeYAML(f, &out); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
	return nil
}

func writeYAML(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func validateDir(input string) error {
	if input == "" {
		return errors.New("directory is required")
	}
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", input, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", input)
	}
	return nil
}

func validateExtension(input string) error {
	if input == "" {
		return nil
	}
	if !strings.HasPrefix(input, ".") {
		return errors.New("extension must start with '.'")
	}
	if strings.Contains(input, "/") {
		return errors.New("extension must not contain '/'")
	}
	return nil
}

func validatePort(input string) error {
	port, err := strconv.Atoi(input)
	if err != nil {
		return errors.New("port must be a number")
	}
	if port < 1 || port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return errors.New("cancelled")
	}
	return fmt.Errorf("prompt: %w", err)
}

func indexOf(items []string, s string) int {
	for i, item := range items {
		if item == s {
			return i
		}
	}
	return 0
}
