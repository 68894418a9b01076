package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"droneops-dispatch/internal/dashboard"
)

var dashboardOut string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render Grafana dashboards",
	Long:  "dashboard renders the telemetry and registry dashboards into --out. Datasource uids come from GREPTIMEDB_DATASOURCE_UID and POSTGRES_DATASOURCE_UID.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := dashboard.Render(dashboardOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dashboards written to %s\n", dashboardOut)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "build/dashboards", "Output directory")
}
