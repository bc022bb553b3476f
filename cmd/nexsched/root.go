package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/app"
	"github.com/aatumaykin/nexsched/internal/config"
	"github.com/aatumaykin/nexsched/internal/logger"
)

var (
	configPath string
	logLevel   string
	noColor    bool

	// appOptions are passed to every App built by loadApp
	appOptions []app.Option
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nexsched",
	Short: "nexsched - launchd task scheduler with a shared registry",
	Long: `nexsched manages recurring shell commands as launchd jobs.

Tasks live in one JSON registry that can be shared between machines with
a file-sync tool. Each task is designated to one machine; only that
machine installs its launchd job. Run 'nexsched reconcile' or
'nexsched watch' to apply registry edits made on the other machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $NEXSCHED_CONFIG or "+config.DefaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(metricsCmd)
}

// loadConfig reads .env files and the configuration for this invocation.
func loadConfig() (*config.Config, string, error) {
	if _, err := config.LoadEnvFiles(".env", config.DefaultEnvPath); err != nil {
		return nil, "", err
	}

	path := config.ResolvePath(configPath)
	cfg, err := config.LoadOptional(path)
	if err != nil {
		return nil, path, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, path, nil
}

// loadApp builds an initialized App. The caller closes it.
func loadApp() (*app.App, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := app.New(cfg, log, appOptions...)
	if err := a.Initialize(); err != nil {
		_ = log.Close()
		return nil, err
	}
	return a, nil
}

// taskName returns --name, or the single positional argument.
func taskName(flagValue string, args []string) string {
	if flagValue == "" && len(args) > 0 {
		return args[0]
	}
	return flagValue
}
