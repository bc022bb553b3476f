package main

import (
	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/metrics"
)

var metricsTextfile string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Export task status as Prometheus metrics",
	Long: `Compute the status of every task and write Prometheus gauges in the text
exposition format, either to a node_exporter textfile collector file or to
stdout. Without --textfile the [metrics] textfile setting is used; "-"
forces stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		views, err := a.Manager().List(cmd.Context())
		if err != nil {
			return err
		}

		exporter := metrics.NewExporter()
		exporter.Observe(views)

		path := a.Config().Metrics.Textfile
		if cmd.Flags().Changed("textfile") {
			path = metricsTextfile
		}
		if path == "" || path == "-" {
			return exporter.Write(cmd.OutOrStdout())
		}
		return exporter.WriteTextfile(path)
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsTextfile, "textfile", "", `write to this file instead of stdout ("-" for stdout)`)
}
