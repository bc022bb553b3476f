package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/watch"
)

var watchDebounce = watch.DefaultDebounce

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reconcile whenever the registry file changes",
	Long: `Run until interrupted, reconciling launchd on this machine at start and
after every change to the registry file, including changes written by a
file-sync tool on behalf of the other machine. A registry that fails to
parse is logged and left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return a.Watcher(watchDebounce).Run(ctx)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "wait this long after the last change before reconciling")
}
