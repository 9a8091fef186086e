package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-overlay/go-overlay/export"
)

func newResolveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the snapshot resolved at a game version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.resolve(cmd.Context())
			if err != nil {
				return err
			}
			switch strings.ToLower(a.config.Format) {
			case "yaml":
				return export.WriteYAML(cmd.OutOrStdout(), s)
			case "text":
				return export.WriteText(cmd.OutOrStdout(), s)
			}
			return fmt.Errorf("unknown format %q", a.config.Format)
		},
	}
	cmd.Flags().String("format", "", "output format: yaml or text")
	return cmd
}

func newWarningsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "warnings",
		Short: "List the data anomalies found while resolving a game version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.resolve(cmd.Context())
			if err != nil {
				return err
			}
			for _, w := range s.Warnings() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), w); err != nil {
					return err
				}
			}
			if s.Len() == 0 {
				cmd.PrintErrln("The snapshot holds no tanks.")
			}
			return nil
		},
	}
}
