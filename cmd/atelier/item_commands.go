package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"atelier/internal/store"
	"atelier/internal/workflow"
)

func newItemCommand(ctx *commandContext) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Manage garment items in production",
	}

	itemCmd.AddCommand(newItemAddCommand(ctx))
	itemCmd.AddCommand(newItemListCommand(ctx))
	itemCmd.AddCommand(newItemShowCommand(ctx))
	itemCmd.AddCommand(newItemAdvanceCommand(ctx))
	itemCmd.AddCommand(newItemDeliverCommand(ctx))
	itemCmd.AddCommand(newItemStatsCommand(ctx))
	itemCmd.AddCommand(newItemRemoveCommand(ctx))

	return itemCmd
}

func newItemAddCommand(ctx *commandContext) *cobra.Command {
	var garmentFlag string
	var orderFlag string
	var quantityFlag int
	var dueFlag string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new garment item at intake",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine) error {
				if _, err := eng.templates.Profile(garmentFlag); err != nil {
					return fmt.Errorf("unknown garment type %q; known types: %s",
						garmentFlag, strings.Join(eng.templates.GarmentTypes(), ", "))
				}

				var due time.Time
				if strings.TrimSpace(dueFlag) != "" {
					parsed, err := time.ParseInLocation("2006-01-02", dueFlag, time.Local)
					if err != nil {
						return fmt.Errorf("parse due date %q: %w", dueFlag, err)
					}
					due = parsed
				}

				item, err := eng.store.NewItem(cmd.Context(), orderFlag, garmentFlag, quantityFlag, due)
				if err != nil {
					return err
				}
				if err := eng.controller.EnsureTasksGenerated(cmd.Context(), item.ID, item.CurrentStage); err != nil {
					return err
				}
				if err := eng.store.AppendTimeline(cmd.Context(), item.ID, workflow.TimelineEntry{
					Stage:     item.CurrentStage,
					Action:    workflow.TimelineActionIntake,
					StaffID:   actor.ID,
					StaffName: actor.Name,
					At:        time.Now().UTC(),
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d registered (%s, stage %s)\n",
					item.ID, displayLabel(item.GarmentType), displayLabel(string(item.CurrentStage)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&garmentFlag, "garment", "", "Garment type (required)")
	cmd.Flags().StringVar(&orderFlag, "order", "", "Customer order reference")
	cmd.Flags().IntVar(&quantityFlag, "quantity", 1, "Number of garments")
	cmd.Flags().StringVar(&dueFlag, "due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("garment")

	return cmd
}

func newItemListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List garment items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				var statuses []workflow.ItemStatus
				if strings.TrimSpace(statusFlag) != "" {
					statuses = append(statuses, workflow.ItemStatus(strings.ToLower(strings.TrimSpace(statusFlag))))
				}
				items, err := eng.store.ListItems(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No items")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.OrderRef,
						displayLabel(item.GarmentType),
						strconv.Itoa(item.Quantity),
						displayLabel(string(item.CurrentStage)),
						displayLabel(string(item.Status)),
						formatDate(item.DueDate),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Order", "Garment", "Qty", "Stage", "Status", "Due"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status: not_started, in_progress, completed, delivered")
	return cmd
}

func newItemShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show an item, its current checklist, and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine) error {
				item, err := eng.store.GetItem(cmd.Context(), itemID)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", itemID)
				}

				// Heal a stage whose generation was interrupted.
				if err := eng.controller.EnsureTasksGenerated(cmd.Context(), item.ID, item.CurrentStage); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Item %d  %s  order %s\n", item.ID, displayLabel(item.GarmentType), valueOrDash(item.OrderRef))
				fmt.Fprintf(out, "Stage: %s  Status: %s  Due: %s\n\n",
					displayLabel(string(item.CurrentStage)), displayLabel(string(item.Status)), formatDate(item.DueDate))

				tasks, err := eng.store.TasksForItemStage(cmd.Context(), item.ID, item.CurrentStage)
				if err != nil {
					return err
				}
				if len(tasks) > 0 {
					rows := make([][]string, 0, len(tasks))
					for _, task := range tasks {
						rows = append(rows, []string{
							shortTaskID(task.ID),
							task.Name,
							formatMandatory(task.Mandatory),
							displayLabel(string(task.Status)),
							formatAssignee(task),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Task", "Name", "Mandatory", "Status", "Assignee"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
					))
				}

				entries, err := eng.store.Timeline(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				if len(entries) > 0 {
					fmt.Fprintln(out, "\nTimeline:")
					for _, entry := range entries {
						fmt.Fprintf(out, "  %s  %-14s %s  by %s\n",
							formatTimestamp(entry.At),
							displayLabel(string(entry.Stage)),
							entry.Action,
							valueOrDash(entry.StaffName),
						)
					}
				}
				return nil
			})
		},
	}
}

func newItemAdvanceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <item-id>",
		Short: "Advance an item to its next production stage",
		Long: "Advance an item once every mandatory task in its current stage is " +
			"approved. The advance holds the workshop lock so two workstations " +
			"cannot interleave the stage move, checklist seeding, and timeline write.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine) error {
				lock := store.NewWorkshopLock(eng.cfg)
				if err := lock.Acquire(cmd.Context()); err != nil {
					return err
				}
				defer func() { _ = lock.Release() }()

				next, err := eng.controller.AdvanceStage(cmd.Context(), itemID, actor)
				if err != nil {
					return err
				}
				if next.IsTerminal() {
					fmt.Fprintf(cmd.OutOrStdout(), "Item %d completed production\n", itemID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d advanced to %s\n", itemID, displayLabel(string(next)))
				return nil
			})
		},
	}
}

func newItemDeliverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deliver <item-id>",
		Short: "Record hand-over of a completed item to the customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine) error {
				if err := eng.controller.Deliver(cmd.Context(), itemID, actor); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d delivered\n", itemID)
				return nil
			})
		},
	}
}

func newItemStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the item count per production stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				stats, err := eng.store.ItemStats(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(stats))
				total := 0
				for _, stage := range workflow.Stages() {
					count, ok := stats[stage]
					if !ok {
						continue
					}
					rows = append(rows, []string{displayLabel(string(stage)), strconv.Itoa(count)})
					total += count
				}
				if total == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No items")
					return nil
				}
				rows = append(rows, []string{"Total", strconv.Itoa(total)})
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Stage", "Items"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newItemRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove an item and all of its tasks and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine) error {
				removed, err := eng.store.RemoveItem(cmd.Context(), itemID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("item %d not found", itemID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d removed\n", itemID)
				return nil
			})
		},
	}
}

func newStagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "Show the production stage sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(workflow.Stages()))
			for i, stage := range workflow.Stages() {
				kind := ""
				switch {
				case stage.IsTerminal():
					kind = "terminal"
				case stage.IsConditional():
					kind = "conditional"
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), displayLabel(string(stage)), kind})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Stage", ""},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func parseItemID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", value)
	}
	return id, nil
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
