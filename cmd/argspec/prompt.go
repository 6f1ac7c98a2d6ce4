package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/argspec/pkg/logging"
	"github.com/ormasoftchile/argspec/pkg/prompt"
	"github.com/ormasoftchile/argspec/pkg/report"
	"github.com/ormasoftchile/argspec/pkg/spec"
	"github.com/ormasoftchile/argspec/pkg/validate"
)

var (
	promptSpec string
	promptArgs string
	promptOut  string
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Ask for missing arguments interactively, then validate them",
	Args:  cobra.NoArgs,
	RunE:  runPrompt,
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ms, err := spec.LoadFile(promptSpec)
	if err != nil {
		return err
	}
	values := map[string]any{}
	if promptArgs != "" {
		if values, err = spec.LoadArgsFile(promptArgs); err != nil {
			return err
		}
	}

	p, err := prompt.New()
	if err != nil {
		return err
	}
	defer p.Close()
	filled, err := p.Fill(cmd.Context(), &ms.Args, values)
	if err != nil {
		return err
	}

	if promptOut != "" {
		data, err := yaml.Marshal(filled)
		if err != nil {
			return fmt.Errorf("encode args: %w", err)
		}
		if err := os.WriteFile(promptOut, data, 0o644); err != nil {
			return fmt.Errorf("write args: %w", err)
		}
	}

	v := validate.New(
		validate.WithLogger(logging.FromContext(cmd.Context())),
		validate.WithConcurrency(cfg.Validate.Concurrency),
	)
	warnings, err := v.Validate(cmd.Context(), filled, &ms.Args)
	if err != nil {
		return err
	}
	rep := report.New(ms.ModelName, promptOut, warnings)
	out := cmd.OutOrStdout()
	if err := report.Write(out, report.FormatText, rep, report.Options{Styled: isTerminal(out)}); err != nil {
		return err
	}
	if !rep.Valid {
		return fmt.Errorf("%w: %d warning(s)", errInvalidArgs, len(rep.Warnings))
	}
	return nil
}

func init() {
	promptCmd.Flags().StringVar(&promptSpec, "spec", "", "Model spec YAML file")
	promptCmd.Flags().StringVar(&promptArgs, "args", "", "Args file with answers already known")
	promptCmd.Flags().StringVar(&promptOut, "out", "", "Write the completed args to this YAML file")
	_ = promptCmd.MarkFlagRequired("spec")
}
