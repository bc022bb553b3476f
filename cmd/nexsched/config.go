package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/config"
	"github.com/aatumaykin/nexsched/internal/constants"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Validate and inspect nexsched configuration.`,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file and check for errors.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		path := configPath
		if len(args) > 0 {
			path = args[0]
		}
		path = config.ResolvePath(path)

		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Fprintf(out, constants.MsgConfigDefaults, path)
		}
		cfg, err := config.LoadOptional(path)
		if err != nil {
			return err
		}

		errs := cfg.Validate()
		if len(errs) > 0 {
			fmt.Fprintf(out, constants.MsgConfigInvalid, len(errs))
			for _, e := range errs {
				fmt.Fprintf(out, "  - %v\n", e)
			}
			return fmt.Errorf("configuration %s is invalid", path)
		}

		fmt.Fprintf(out, constants.MsgConfigValid, path)
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the configuration after defaults and environment expansion, as TOML.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := cfg.Encode()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
