package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"liyu1981.xyz/fleet-dashboard-service/pkg/sim"
	"liyu1981.xyz/fleet-dashboard-service/pkg/store"
)

var (
	devices     int
	historyDays int
	csvPath     string
	appendToday bool

	rootCmd = &cobra.Command{
		Use:   "fleetsim",
		Short: "Device metrics CSV simulator",
		Long: `fleetsim - Device Metrics Simulator

Generates synthetic per-device daily metrics into a CSV file:
- Backfills initial history when the file does not exist yet
- Appends one row per device for today with --append-today (idempotent:
  re-running on the same day replaces today's rows, it never duplicates)

The dashboard server reads the same CSV. Single writer assumed; do not run
two simulators against one file at the same time.`,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			simulator := sim.New(store.NewCSVStore(csvPath))

			created, err := simulator.EnsureHistory(historyDays, devices)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("Created %s with %d days of history for %d devices\n",
					csvPath, historyDays, devices)
			} else {
				fmt.Printf("Found existing %s\n", csvPath)
			}

			if appendToday {
				if err := simulator.AppendToday(devices); err != nil {
					return err
				}
				fmt.Printf("Appended %d rows for today to %s\n", devices, csvPath)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.Flags().IntVar(&devices, "devices", 5, "Number of devices")
	rootCmd.Flags().IntVar(&historyDays, "history-days", 14, "Initial backfill days if file missing")
	rootCmd.Flags().StringVar(&csvPath, "csv", "device_metrics.csv", "CSV filename")
	rootCmd.Flags().BoolVar(&appendToday, "append-today", false, "Append today's data and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
