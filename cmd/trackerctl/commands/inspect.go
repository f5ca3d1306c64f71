package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStreakCmd creates the streak command
func NewStreakCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "streak <owner-id> <tracker-id>",
		Short: "Show a tracker's current and longest streak",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, trackerID, err := parseIDs(args[0], args[1])
			if err != nil {
				return err
			}
			asOf, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			res, err := rt.streaks.Calculate(context.Background(), ownerID, trackerID, asOf)
			if err != nil {
				return fmt.Errorf("failed to calculate streak: %w", err)
			}
			return printJSON(res)
		},
	}

	cmd.Flags().StringVar(&dateFlag, "as-of", "", "Evaluation date (YYYY-MM-DD, default today)")
	return cmd
}

// NewPointsCmd creates the points command
func NewPointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points <owner-id> <tracker-id>",
		Short: "Show goal progress for the current goal period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, trackerID, err := parseIDs(args[0], args[1])
			if err != nil {
				return err
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			now, err := parseDateFlag("")
			if err != nil {
				return err
			}
			res, err := rt.points.CalculateCurrent(context.Background(), ownerID, trackerID, now)
			if err != nil {
				return fmt.Errorf("failed to calculate points: %w", err)
			}
			return printJSON(res)
		},
	}
	return cmd
}

// NewInsightsCmd creates the insights command
func NewInsightsCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "insights <owner-id> <tracker-id>",
		Short: "Show the full insight summary for a tracker",
		Long:  "Run day-of-week, difficulty, anchor-task, mood, and schedule analyses over the trailing window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, trackerID, err := parseIDs(args[0], args[1])
			if err != nil {
				return err
			}
			asOf, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			summary, err := rt.insights.Analyze(context.Background(), ownerID, trackerID, asOf)
			if err != nil {
				return fmt.Errorf("failed to analyze tracker: %w", err)
			}
			return printJSON(summary)
		},
	}

	cmd.Flags().StringVar(&dateFlag, "as-of", "", "Evaluation date (YYYY-MM-DD, default today)")
	return cmd
}
