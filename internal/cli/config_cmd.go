package cli

import (
	"fmt"
	"os"

	"reaperbridge/internal/config"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// secretEnvNames maps provider names to the env var persisted in .env.local.
var secretEnvNames = map[string]string{
	"gemini":     "GEMINI_API_KEY",
	"elevenlabs": "ELEVENLABS_API_KEY",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE:  runConfigInit,
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print effective config as TOML (secrets never included)",
	RunE:  runConfigPrint,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <gemini|elevenlabs>",
	Short: "Store an API key in .env.local (masked prompt)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetKey,
}

var configUnsetKeyCmd = &cobra.Command{
	Use:   "unset-key <gemini|elevenlabs>",
	Short: "Remove a stored API key from .env.local",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnsetKey,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPrintCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configUnsetKeyCmd)
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if err := config.Save(config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	fmt.Println("Set GEMINI_API_KEY (and optionally ELEVENLABS_API_KEY) in your environment, or run 'reaperbridge config set-key gemini'.")
	return nil
}

func runConfigPrint(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}
	// API keys carry toml:"-" so encoding cannot leak them.
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}

func runConfigSetKey(_ *cobra.Command, args []string) error {
	envName, ok := secretEnvNames[args[0]]
	if !ok {
		return fmt.Errorf("unknown provider %q (expected gemini or elevenlabs)", args[0])
	}
	key, err := ReadSecret(args[0] + " API key: ")
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if key == "" {
		return fmt.Errorf("no key entered")
	}
	if err := config.SaveSecret(envName, key); err != nil {
		return err
	}
	fmt.Println("Saved", envName, "to .env.local")
	return nil
}

func runConfigUnsetKey(_ *cobra.Command, args []string) error {
	envName, ok := secretEnvNames[args[0]]
	if !ok {
		return fmt.Errorf("unknown provider %q (expected gemini or elevenlabs)", args[0])
	}
	if err := config.DeleteSecret(envName); err != nil {
		return err
	}
	fmt.Println("Removed", envName, "from .env.local")
	return nil
}
