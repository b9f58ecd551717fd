package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"talentreview/internal/domain/cycles"
)

type cycleFile struct {
	Title     string        `yaml:"title"`
	StartDate string        `yaml:"startDate"`
	EndDate   string        `yaml:"endDate"`
	Status    cycles.Status `yaml:"status"`
}

type cycleFlags struct {
	file  string
	today string
}

func newCycleCmd() *cobra.Command {
	f := &cycleFlags{}
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Check whether a cycle accepts evaluation writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(cmd.OutOrStdout(), f)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "Cycle YAML file")
	flags.StringVar(&f.today, "today", "", "Evaluate as of this date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runCycle(w io.Writer, f *cycleFlags) error {
	raw, err := os.ReadFile(f.file)
	if err != nil {
		return exitError(3, "failed to read cycle: %v", err)
	}
	cycle, err := parseCycle(raw)
	if err != nil {
		return exitError(2, "%v", err)
	}
	var opts []cycles.GuardOption
	if f.today != "" {
		day, err := time.Parse(time.DateOnly, f.today)
		if err != nil {
			return exitError(2, "invalid --today: %v", err)
		}
		opts = append(opts, cycles.WithClock(func() time.Time { return day }))
	}
	guard := cycles.NewGuard(opts...)

	window := guard.Validate(cycle)
	fmt.Fprintf(w, "cycle:    %s (%s)\n", cycle.Title, cycle.Status)
	fmt.Fprintf(w, "window:   %s to %s\n", cycle.StartDate.Format(time.DateOnly), cycle.EndDate.Format(time.DateOnly))
	fmt.Fprintf(w, "in range: %t\n", window.IsValid)
	if err := guard.CheckWritable(cycle); err != nil {
		fmt.Fprintf(w, "writable: false\n")
		return exitError(1, "%v", err)
	}
	fmt.Fprintf(w, "writable: true\n")
	return nil
}

func parseCycle(raw []byte) (cycles.Cycle, error) {
	var in cycleFile
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return cycles.Cycle{}, fmt.Errorf("parse cycle: %w", err)
	}
	start, err := time.Parse(time.DateOnly, in.StartDate)
	if err != nil {
		return cycles.Cycle{}, fmt.Errorf("invalid startDate: %w", err)
	}
	end, err := time.Parse(time.DateOnly, in.EndDate)
	if err != nil {
		return cycles.Cycle{}, fmt.Errorf("invalid endDate: %w", err)
	}
	if end.Before(start) {
		return cycles.Cycle{}, fmt.Errorf("endDate is before startDate")
	}
	if in.Status == "" {
		in.Status = cycles.StatusOpen
	}
	if !in.Status.Valid() {
		return cycles.Cycle{}, fmt.Errorf("unknown status %q", in.Status)
	}
	return cycles.Cycle{Title: in.Title, StartDate: start, EndDate: end, Status: in.Status}, nil
}
