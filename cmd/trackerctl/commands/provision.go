package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewProvisionCmd creates the provision command
func NewProvisionCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "provision <owner-id> <tracker-id>",
		Short: "Provision the period instance covering a date",
		Long:  "Create (or fetch) the tracker instance whose period covers the given date, with one task per active template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, trackerID, err := parseIDs(args[0], args[1])
			if err != nil {
				return err
			}
			ref, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			inst, created, err := rt.provisioner.EnsureInstance(context.Background(), ownerID, trackerID, ref)
			if err != nil {
				return fmt.Errorf("failed to provision: %w", err)
			}

			if created {
				fmt.Printf("Created instance %s\n", inst.ID)
			} else {
				fmt.Printf("Instance %s already existed\n", inst.ID)
			}
			return printJSON(inst)
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Reference date (YYYY-MM-DD, default today)")
	return cmd
}

// NewCheckAllCmd creates the check-all command
func NewCheckAllCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "check-all <owner-id>",
		Short: "Provision every active tracker of an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid owner id %q: %w", args[0], err)
			}
			ref, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			report, err := rt.provisioner.CheckAllTrackers(context.Background(), ownerID, ref)
			if err != nil {
				return fmt.Errorf("failed to check trackers: %w", err)
			}

			fmt.Printf("Provisioned %d, existing %d, failed %d\n",
				report.Provisioned, report.Existing, len(report.Failed))
			return printJSON(report)
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Reference date (YYYY-MM-DD, default today)")
	return cmd
}
