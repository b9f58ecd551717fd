package main

import (
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"talentreview/internal/domain/competencies"
	"talentreview/internal/domain/evaluations"
)

func newTemplateCmd() *cobra.Command {
	var evalType string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an unscored evaluation fixture with the default catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := evaluations.Type(evalType)
			if !t.Valid() {
				return exitError(2, "unknown evaluation type %q", evalType)
			}
			return writeTemplate(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVar(&evalType, "type", string(evaluations.TypeLeader), "Evaluation type: self, leader or consensus")
	return cmd
}

func writeTemplate(w io.Writer, t evaluations.Type) error {
	comps, potential := competencies.DefaultCatalog()
	out := evaluationFile{
		CycleID:    uuid.NewString(),
		EmployeeID: uuid.NewString(),
		Type:       t,
		Criteria:   competencies.Sections(comps),
	}
	if t.RatesPotential() {
		form := competencies.PotentialForm(potential)
		out.Potential = &form
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
