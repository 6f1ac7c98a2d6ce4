package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/argspec/pkg/report"
	"github.com/ormasoftchile/argspec/pkg/spec"
)

var describeRaw bool

var describeCmd = &cobra.Command{
	Use:   "describe [model.yaml]",
	Short: "Show the arguments a model spec declares",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ms, err := spec.LoadFile(args[0])
		if err != nil {
			return err
		}
		if err := ms.Args.Check(nil); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		md := report.Describe(ms)
		out := cmd.OutOrStdout()
		if describeRaw || !isTerminal(out) {
			_, err := fmt.Fprint(out, md)
			return err
		}
		rendered, err := report.RenderMarkdown(md, 120)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	},
}

func init() {
	describeCmd.Flags().BoolVar(&describeRaw, "raw", false, "Print Markdown source instead of rendering it")
}
