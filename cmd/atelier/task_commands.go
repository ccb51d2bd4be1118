package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"atelier/internal/workflow"
)

func newTaskCommand(ctx *commandContext) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Work the checklist tasks on an item's current stage",
	}

	taskCmd.AddCommand(newTaskListCommand(ctx))
	taskCmd.AddCommand(newTaskAssignCommand(ctx))
	taskCmd.AddCommand(newTaskStartCommand(ctx))
	taskCmd.AddCommand(newTaskCompleteCommand(ctx))
	taskCmd.AddCommand(newTaskApproveCommand(ctx))
	taskCmd.AddCommand(newTaskRejectCommand(ctx))

	return taskCmd
}

func newTaskListCommand(ctx *commandContext) *cobra.Command {
	var allStages bool
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list <item-id>",
		Short: "List tasks for an item's current stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			var statusFilter workflow.TaskStatus
			if strings.TrimSpace(statusFlag) != "" {
				status, ok := workflow.ParseTaskStatus(strings.ToLower(strings.TrimSpace(statusFlag)))
				if !ok {
					return fmt.Errorf("unknown task status %q", statusFlag)
				}
				statusFilter = status
			}
			return ctx.withEngine(func(eng *engine) error {
				item, err := eng.store.GetItem(cmd.Context(), itemID)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", itemID)
				}
				if err := eng.controller.EnsureTasksGenerated(cmd.Context(), item.ID, item.CurrentStage); err != nil {
					return err
				}

				var tasks []*workflow.Task
				if allStages {
					tasks, err = eng.store.TasksForItem(cmd.Context(), itemID)
				} else {
					tasks, err = eng.store.TasksForItemStage(cmd.Context(), itemID, item.CurrentStage)
				}
				if err != nil {
					return err
				}
				if statusFilter != "" {
					filtered := tasks[:0]
					for _, task := range tasks {
						if task.Status == statusFilter {
							filtered = append(filtered, task)
						}
					}
					tasks = filtered
				}
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
					return nil
				}

				rows := make([][]string, 0, len(tasks))
				for _, task := range tasks {
					rows = append(rows, []string{
						shortTaskID(task.ID),
						displayLabel(string(task.Stage)),
						task.Name,
						formatMandatory(task.Mandatory),
						displayLabel(string(task.Status)),
						formatAssignee(task),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Task", "Stage", "Name", "Mandatory", "Status", "Assignee"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&allStages, "all", false, "Include tasks from earlier stages")
	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by task status (e.g. needs_rework)")
	return cmd
}

func (c *commandContext) resolveTaskID(ctx context.Context, eng *engine, ref string) (string, error) {
	task, err := eng.store.FindTaskByPrefix(ctx, strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	if task == nil {
		return "", fmt.Errorf("task %q not found", ref)
	}
	return task.ID, nil
}

func newTaskAssignCommand(ctx *commandContext) *cobra.Command {
	var toIDFlag string
	var toNameFlag string

	cmd := &cobra.Command{
		Use:   "assign <task-id>",
		Short: "Assign a task to a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			if strings.TrimSpace(toIDFlag) == "" {
				return fmt.Errorf("--to is required")
			}
			name := strings.TrimSpace(toNameFlag)
			if name == "" {
				name = strings.TrimSpace(toIDFlag)
			}
			return ctx.withEngine(func(eng *engine) error {
				taskID, err := ctx.resolveTaskID(cmd.Context(), eng, args[0])
				if err != nil {
					return err
				}
				if err := eng.controller.AssignTask(cmd.Context(), taskID, actor, strings.TrimSpace(toIDFlag), name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s assigned to %s\n", shortTaskID(taskID), name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&toIDFlag, "to", "", "Assignee staff identifier (required)")
	cmd.Flags().StringVar(&toNameFlag, "to-name", "", "Assignee display name")
	return cmd
}

func newTaskStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start a task (claims it when unassigned)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine) error {
				taskID, err := ctx.resolveTaskID(cmd.Context(), eng, args[0])
				if err != nil {
					return err
				}
				if err := eng.controller.StartTask(cmd.Context(), taskID, actor); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s started\n", shortTaskID(taskID))
				return nil
			})
		},
	}
}

func newTaskCompleteCommand(ctx *commandContext) *cobra.Command {
	var notesFlag string

	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task completed, ready for checking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine) error {
				taskID, err := ctx.resolveTaskID(cmd.Context(), eng, args[0])
				if err != nil {
					return err
				}
				if err := eng.controller.CompleteTask(cmd.Context(), taskID, actor, notesFlag); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s completed\n", shortTaskID(taskID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&notesFlag, "notes", "", "Optional completion notes")
	return cmd
}

func newTaskApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <task-id>",
		Short: "Approve a completed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine) error {
				taskID, err := ctx.resolveTaskID(cmd.Context(), eng, args[0])
				if err != nil {
					return err
				}
				if err := eng.controller.ApproveTask(cmd.Context(), taskID, actor); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s approved\n", shortTaskID(taskID))
				return nil
			})
		},
	}
}

func newTaskRejectCommand(ctx *commandContext) *cobra.Command {
	var reasonFlag string

	cmd := &cobra.Command{
		Use:   "reject <task-id>",
		Short: "Send a completed task back for rework",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine) error {
				taskID, err := ctx.resolveTaskID(cmd.Context(), eng, args[0])
				if err != nil {
					return err
				}
				if err := eng.controller.RejectTask(cmd.Context(), taskID, actor, reasonFlag); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s sent back for rework\n", shortTaskID(taskID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reasonFlag, "reason", "", "Rework reason (required)")
	return cmd
}
