package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/humbkr/nextjs-project-starter/internal/branding"
	"github.com/humbkr/nextjs-project-starter/internal/config"
)

func newConfigCmd(env *environment) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user settings",
		Long: fmt.Sprintf(`Read and write settings stored at ~/%s/config.yaml.

Known keys: %s`, branding.HomeDir(), strings.Join(config.Keys(), ", ")),
	}

	configSetCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := config.Set(key, value); err != nil {
				return fmt.Errorf("setting config key %q: %w", key, err)
			}
			env.log().Debug("setting saved", "key", key, "file", config.FilePath())
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}

	configGetCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !config.IsKnown(args[0]) {
				return fmt.Errorf("unknown setting %q (known: %s)", args[0], strings.Join(config.Keys(), ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
			return nil
		},
	}

	configCmd.AddCommand(configSetCmd, configGetCmd)
	return configCmd
}
