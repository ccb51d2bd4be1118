package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"atelier/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and bootstrap the configuration",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "data_dir:  %s\n", cfg.DataDir)
			fmt.Fprintf(out, "log_dir:   %s\n", cfg.LogDir)
			fmt.Fprintf(out, "templates: %s\n", valueOrDash(cfg.Workshop.TemplatesPath))
			fmt.Fprintf(out, "operator:  %s (%s, role %s)\n",
				valueOrDash(cfg.Operator.StaffID),
				valueOrDash(cfg.Operator.StaffName),
				valueOrDash(cfg.Operator.Role),
			)
			fmt.Fprintf(out, "logging:   %s / %s\n", cfg.Logging.Format, cfg.Logging.Level)
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var pathFlag string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(pathFlag)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				target = defaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&pathFlag, "path", "", "Target path (default: the standard config location)")
	return cmd
}
