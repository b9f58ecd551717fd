package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"talentreview/internal/domain/evaluations"
	"talentreview/internal/domain/scoring"
)

// evaluationFile is the YAML fixture shape read by score and written by
// template.
type evaluationFile struct {
	CycleID    string                    `yaml:"cycleId,omitempty"`
	EmployeeID string                    `yaml:"employeeId,omitempty"`
	Type       evaluations.Type          `yaml:"type"`
	Criteria   []scoring.CategorySection `yaml:"criteria"`
	Potential  *scoring.PotentialItems   `yaml:"potential,omitempty"`
}

type scoreFlags struct {
	file   string
	output string
}

func newScoreCmd() *cobra.Command {
	f := &scoreFlags{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an evaluation fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.OutOrStdout(), f)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "Evaluation YAML file")
	flags.StringVarP(&f.output, "output", "o", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runScore(w io.Writer, f *scoreFlags) error {
	raw, err := os.ReadFile(f.file)
	if err != nil {
		return exitError(3, "failed to read evaluation: %v", err)
	}
	ev, err := scoreFixture(raw)
	if err != nil {
		return exitError(2, "%v", err)
	}
	switch f.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ev)
	case "text":
		writeScoreText(w, ev)
		return nil
	default:
		return exitError(2, "unknown output format %q", f.output)
	}
}

func scoreFixture(raw []byte) (evaluations.Evaluation, error) {
	var in evaluationFile
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return evaluations.Evaluation{}, fmt.Errorf("parse evaluation: %w", err)
	}
	if in.Type == "" {
		in.Type = evaluations.TypeLeader
	}
	if !in.Type.Valid() {
		return evaluations.Evaluation{}, fmt.Errorf("unknown evaluation type %q", in.Type)
	}
	if !in.Type.RatesPotential() {
		in.Potential = nil
	}
	return evaluations.Preview(evaluations.SaveInput{
		CycleID:    in.CycleID,
		EmployeeID: in.EmployeeID,
		Type:       in.Type,
		Criteria:   in.Criteria,
		Potential:  in.Potential,
	})
}

func writeScoreText(w io.Writer, ev evaluations.Evaluation) {
	fmt.Fprintf(w, "type:            %s\n", ev.Type)
	fmt.Fprintf(w, "progress:        %d/%d\n", ev.Progress.Scored, ev.Progress.Total)
	fmt.Fprintf(w, "technical:       %.2f\n", ev.Scores.Technical)
	fmt.Fprintf(w, "behavioral:      %.2f\n", ev.Scores.Behavioral)
	fmt.Fprintf(w, "organizational:  %.2f\n", ev.Scores.Organizational)
	fmt.Fprintf(w, "final:           %.2f (%s)\n", ev.Scores.Final, ev.PerformanceLabel)
	if ev.Potential != nil {
		fmt.Fprintf(w, "potential:       %.2f (%s)\n", ev.Potential.Final, ev.PotentialLabel)
	}
	if ev.NineBox != nil {
		fmt.Fprintf(w, "nine-box:        %d %s\n", ev.NineBox.Position, ev.NineBox.Label)
	}
}
