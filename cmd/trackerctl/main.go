package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/14harshaldhote/trackpro/cmd/trackerctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "trackerctl",
		Short: "Operator tool for the tracker engine",
		Long:  "CLI for provisioning tracker instances and inspecting streaks, points, and insights",
	}

	rootCmd.AddCommand(commands.NewProvisionCmd())
	rootCmd.AddCommand(commands.NewCheckAllCmd())
	rootCmd.AddCommand(commands.NewStreakCmd())
	rootCmd.AddCommand(commands.NewPointsCmd())
	rootCmd.AddCommand(commands.NewInsightsCmd())
	rootCmd.AddCommand(commands.NewTaskCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
