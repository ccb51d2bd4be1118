package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var staffIDFlag string
	var staffNameFlag string
	var roleFlag string

	ctx := newCommandContext(&configFlag, &staffIDFlag, &staffNameFlag, &roleFlag)

	rootCmd := &cobra.Command{
		Use:           "atelier",
		Short:         "Tailoring-shop production tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&staffIDFlag, "staff-id", "", "Acting staff identifier (overrides config)")
	rootCmd.PersistentFlags().StringVar(&staffNameFlag, "staff-name", "", "Acting staff name (overrides config)")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Acting staff role: admin, supervisor, checker, tailor")

	rootCmd.AddCommand(newItemCommand(ctx))
	rootCmd.AddCommand(newTaskCommand(ctx))
	rootCmd.AddCommand(newStagesCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "init" && c.Parent() != nil && c.Parent().Name() == "config" {
			return true
		}
	}
	return false
}
