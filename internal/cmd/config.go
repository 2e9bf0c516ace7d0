package cmd

import (
	"encoding/json"
	"fmt"

	"resin-sdk-go/internal/config"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage SDK settings",
		Long: `Manage the settings stored in resin.cfg.

Settings are flat key-value pairs. The schema keys (pine_endpoint,
api_endpoint, api_version, data_directory, image_cache_time,
token_refresh_interval, timeout, cache_directory) always have a value;
removing one restores its default. Other keys are stored as given.

Subcommands:
  get       Get a setting, or all settings
  set       Set a setting
  list      List all settings
  unset     Remove a setting
  reset     Replace all settings with the defaults
  validate  Validate settings
  path      Print the settings file location`,
	}

	cmd.AddCommand(newConfigGetCmd(provider))
	cmd.AddCommand(newConfigSetCmd(provider))
	cmd.AddCommand(newConfigListCmd(provider))
	cmd.AddCommand(newConfigUnsetCmd(provider))
	cmd.AddCommand(newConfigResetCmd(provider))
	cmd.AddCommand(newConfigValidateCmd(provider))
	cmd.AddCommand(newConfigPathCmd(provider))

	return cmd
}

// newConfigGetCmd creates the "config get" subcommand.
func newConfigGetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a setting",
		Long: `Get the value of a setting.

Prints the bare value if the key is set, or "key (not set)" if missing.
Without a key, prints every setting like "config list".

Examples:
  resin config get api_endpoint
  resin config get timeout --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return printSettings(app, "")
			}

			key := args[0]
			value, ok, err := app.Settings.Get(key)
			if err != nil {
				return fmt.Errorf("reading settings: %w", err)
			}

			if app.JSON {
				result := map[string]any{
					"key":   key,
					"value": value,
					"set":   ok,
				}
				if !ok {
					result["value"] = ""
				}
				return json.NewEncoder(app.Out).Encode(result)
			}

			if ok {
				fmt.Fprintln(app.Out, value)
			} else {
				fmt.Fprintf(app.Out, "%s (not set)\n", key)
			}
			return nil
		},
	}

	return cmd
}

// newConfigSetCmd creates the "config set" subcommand.
func newConfigSetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Long: `Set a setting to a value.

Integers are stored as integers and "true"/"false" as booleans; anything
else is stored as a string. Durations such as timeout are milliseconds.

Examples:
  resin config set timeout 60000
  resin config set api_endpoint https://api.example.com/`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			value := parseValue(args[1])

			if err := app.Settings.Set(key, value); err != nil {
				return fmt.Errorf("setting %s: %w", key, err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"key":   key,
					"value": value,
				})
			}

			fmt.Fprintf(app.Out, "Set %s = %v\n", key, value)
			return nil
		},
	}

	return cmd
}

// newConfigListCmd creates the "config list" subcommand.
func newConfigListCmd(provider *AppProvider) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		Long: `List all settings, defaults included.

Entries are sorted alphabetically by key.

Examples:
  resin config list
  resin config list --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			return printSettings(app, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: text, json, yaml, toml (default text, or json with --json)")

	return cmd
}

// printSettings writes every setting in the given format.
func printSettings(app *App, format string) error {
	all, err := app.Settings.All()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	if format == "" {
		format = "text"
		if app.JSON {
			format = "json"
		}
	}

	switch format {
	case "json":
		return json.NewEncoder(app.Out).Encode(all)
	case "yaml":
		enc := yaml.NewEncoder(app.Out)
		enc.SetIndent(2)
		if err := enc.Encode(all); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(app.Out).Encode(map[string]any{config.Section: all})
	case "text":
		fmt.Fprintln(app.Out, "Settings:")
		for _, k := range sortedKeys(all) {
			fmt.Fprintf(app.Out, "  %s = %v\n", k, all[k])
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, yaml, toml)", format)
	}
}

// newConfigUnsetCmd creates the "config unset" subcommand.
func newConfigUnsetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting",
		Long: `Remove a setting.

Removing a schema key restores its default value.

Examples:
  resin config unset timeout
  resin config unset custom_key`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			removed, err := app.Settings.Remove(key)
			if err != nil {
				return fmt.Errorf("removing %s: %w", key, err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"key":     key,
					"removed": removed,
				})
			}

			switch {
			case !removed:
				fmt.Fprintf(app.Out, "%s (not set)\n", key)
			case config.IsRequired(key):
				fmt.Fprintf(app.Out, "Reset %s to its default\n", key)
			default:
				fmt.Fprintf(app.Out, "Unset %s\n", key)
			}
			return nil
		},
	}

	return cmd
}

// newConfigResetCmd creates the "config reset" subcommand.
func newConfigResetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace all settings with the defaults",
		Long: `Replace all settings with the defaults.

The current file is kept as resin.cfg.old. This also logs you out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			if err := app.Settings.Reset(); err != nil {
				return fmt.Errorf("resetting settings: %w", err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{
					"path":   app.Paths.ConfigFile,
					"backup": app.Paths.BackupFile,
				})
			}

			fmt.Fprintf(app.Out, "%s (previous settings saved to %s)\n", app.SuccessColor("Settings reset to defaults"), app.Paths.BackupFile)
			return nil
		},
	}

	return cmd
}

// newConfigValidateCmd creates the "config validate" subcommand.
func newConfigValidateCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate settings",
		Long: `Validate the current settings.

Checks that schema keys have values of the right shape. Other keys
are always accepted.

Examples:
  resin config validate
  resin config validate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			all, err := app.Settings.All()
			if err != nil {
				return fmt.Errorf("reading settings: %w", err)
			}

			verr := config.Validate(all)

			if app.JSON {
				result := map[string]any{"valid": verr == nil}
				if verr != nil {
					result["error"] = verr.Error()
				}
				if err := json.NewEncoder(app.Out).Encode(result); err != nil {
					return err
				}
				return verr
			}

			if verr != nil {
				return verr
			}
			fmt.Fprintln(app.Out, "Settings are valid.")
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the "config path" subcommand.
func newConfigPathCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{
					"data_dir": app.Paths.DataDir,
					"path":     app.Paths.ConfigFile,
				})
			}
			fmt.Fprintln(app.Out, app.Paths.ConfigFile)
			return nil
		},
	}

	return cmd
}
