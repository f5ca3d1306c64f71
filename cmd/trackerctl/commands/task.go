package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/14harshaldhote/trackpro/internal/models"
	"github.com/14harshaldhote/trackpro/internal/queue"
	"github.com/14harshaldhote/trackpro/internal/services/tasks"
)

// NewTaskCmd creates the task command
func NewTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task <owner-id> <task-id> <status>",
		Short: "Transition a task and recompute its tracker's aggregates",
		Long:  "Set a task instance's status (TODO, IN_PROGRESS, DONE, MISSED, BLOCKED), then recompute points and streak and emit any milestone events crossed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid owner id %q: %w", args[0], err)
			}
			taskID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid task id %q: %w", args[1], err)
			}
			status := models.TaskStatus(args[2])

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			var publisher queue.EventPublisher = queue.NoopPublisher{}
			if rt.cfg.RabbitMQURL != "" {
				mq, err := queue.NewRabbitMQQueue(rt.cfg.RabbitMQURL)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: broker unavailable, milestone events will be dropped: %v\n", err)
				} else {
					publisher = mq
					defer func() {
						if err := mq.Close(); err != nil {
							fmt.Fprintf(os.Stderr, "Warning: failed to close broker connection: %v\n", err)
						}
					}()
				}
			}

			svc := tasks.NewService(
				rt.tasks, rt.instances, rt.trackers,
				rt.points, rt.streaks,
				rt.cache, publisher, rt.logger,
			)

			res, err := svc.UpdateStatus(context.Background(), ownerID, taskID, status)
			if err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}

			fmt.Printf("Task %s -> %s (%d milestone event(s))\n", taskID, status, len(res.Milestones))
			return printJSON(res)
		},
	}
	return cmd
}
