package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	stepColor   = color.New(color.FgCyan, color.Bold)
	branchColor = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
	errorColor  = color.New(color.FgRed)
)

func newFlowsCmd(config *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flows",
		Short: "Inspect the built-in service flows",
	}
	cmd.AddCommand(
		newFlowsListCmd(config),
		newFlowsShowCmd(config),
		newFlowsWalkCmd(config),
		newFlowsCheckCmd(),
	)
	return cmd
}

func newFlowsListCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the service catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := buildEngine(config.Overrides)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SERVICE\tLABEL\tQUESTIONS\tDESCRIPTION")
			for _, info := range engine.Catalog().List() {
				fmt.Fprintf(tw, "%s\t%s %s\t%d\t%s\n", info.Type, info.Icon, info.Label, info.QuestionCount, info.Description)
			}
			return tw.Flush()
		},
	}
}

func newFlowsShowCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show SERVICE",
		Short: "Show every step of a service flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := buildEngine(config.Overrides)
			if err != nil {
				return err
			}
			st := models.ServiceType(args[0])
			fc, err := engine.FlowConfig(st)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, step := range fc.Steps {
				stepColor.Fprintf(out, "%s", step.ID)
				fmt.Fprintf(out, "  [%s, %s, %d%%]\n", step.Stage, step.QuestionType, engine.Progress(st, step.ID))
				fmt.Fprintf(out, "  %s\n", step.Question.Prompt)
				if len(step.RequiredFields) > 0 {
					fmt.Fprintf(out, "  requires: %s\n", joinFields(step.RequiredFields))
				}
				fmt.Fprintf(out, "  next: %s\n", describeTransition(step))
			}
			return nil
		},
	}
}

func newFlowsWalkCmd(config *Config) *cobra.Command {
	var branches []string
	cmd := &cobra.Command{
		Use:   "walk SERVICE",
		Short: "Print the path a dialog takes through a flow",
		Long: "Walks a flow from its initial step to the review step. Branch decisions use the\n" +
			"values given with --branch; undecided branches take their default edge.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := buildEngine(config.Overrides)
			if err != nil {
				return err
			}
			data, err := branchData(models.ServiceType(args[0]), branches)
			if err != nil {
				return err
			}
			return walkFlow(cmd.OutOrStdout(), engine, models.ServiceType(args[0]), data)
		},
	}
	cmd.Flags().StringArrayVar(&branches, "branch", nil, "field=value used to decide branches, e.g. hasLogo=true (repeatable)")
	return cmd
}

func newFlowsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the integrity of the built-in flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			flows := flow.DefaultFlows()
			if _, err := flow.NewRegistry(flows...); err != nil {
				var cfgErr *flow.ConfigError
				if errors.As(err, &cfgErr) {
					for _, p := range cfgErr.Problems {
						errorColor.Fprintf(out, "✗ %s\n", p)
					}
				}
				return err
			}
			for _, fc := range flows {
				okColor.Fprintf(out, "✓ %s", fc.ServiceType)
				fmt.Fprintf(out, " (%d steps)\n", len(fc.Steps))
			}
			return nil
		},
	}
}

// walkFlow prints each step on the path from the initial step, with progress.
func walkFlow(out io.Writer, engine *flow.Engine, st models.ServiceType, data models.IntakeData) error {
	fc, err := engine.FlowConfig(st)
	if err != nil {
		return err
	}
	id := fc.InitialStep
	// A well-formed flow visits each step at most once.
	for i := 0; i < len(fc.Steps); i++ {
		step, ok := engine.Step(st, id)
		if !ok {
			return fmt.Errorf("%w: %s", flow.ErrUnknownStep, id)
		}
		fmt.Fprintf(out, "%3d%%  ", engine.Progress(st, id))
		stepColor.Fprintf(out, "%-20s", id)
		fmt.Fprintf(out, " %s\n", step.Question.Prompt)
		if step.Next.Kind == flow.TransitionPredicate && step.Next.When != nil {
			next := step.Next.Resolve(data)
			branchColor.Fprintf(out, "      ↳ %s → %s\n", step.Next.When, next)
		}

		next, ok := engine.NextStep(st, id, data)
		if !ok {
			return nil
		}
		id = next
	}
	return fmt.Errorf("flow %s did not reach a terminal step", st)
}

// branchData builds a data shape for st from field=value pairs. Values "true" and
// "false" become booleans and integers become numbers; anything else is a string.
func branchData(st models.ServiceType, pairs []string) (models.IntakeData, error) {
	data, err := models.NewData(st)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return data, nil
	}
	fragment := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		field, raw, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --branch %q: want field=value", pair)
		}
		fragment[field] = parseBranchValue(strings.TrimSpace(raw))
	}
	patch, err := json.Marshal(fragment)
	if err != nil {
		return nil, err
	}
	return models.MergeData(data, patch)
}

func parseBranchValue(raw string) interface{} {
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func describeTransition(step flow.FlowStep) string {
	switch step.Next.Kind {
	case flow.TransitionStatic:
		return string(step.Next.Target)
	case flow.TransitionPredicate:
		if step.Next.When == nil {
			return string(step.Next.IfAbsent)
		}
		desc := fmt.Sprintf("if %s then %s else %s", step.Next.When, step.Next.IfTrue, step.Next.IfFalse)
		if step.Next.IfAbsent != step.Next.IfFalse {
			desc += fmt.Sprintf(" (unanswered: %s)", step.Next.IfAbsent)
		}
		return desc
	}
	return "end of flow"
}

func joinFields(fields []models.FieldID) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
