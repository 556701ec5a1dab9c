package main

import (
	"fmt"

	"github.com/danmuck/i4/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "i4.toml"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the router identity file",
	}

	var output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteTemplate(output, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote config template to %s\n", output)
			return err
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", defaultConfigPath, "output path")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	var input string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(input)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "valid: %s -> %s (%s)\n", cfg.RouterName, cfg.UpstreamName, cfg.UpstreamAddr)
			return err
		},
	}
	validateCmd.Flags().StringVarP(&input, "input", "i", defaultConfigPath, "config path")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
