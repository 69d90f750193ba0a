package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/octobees/cardshare/internal/entity"
	"github.com/octobees/cardshare/internal/repository"
	"github.com/octobees/cardshare/internal/validation"
)

type checkReport struct {
	File   string                `json:"file" yaml:"file"`
	Valid  bool                  `json:"valid" yaml:"valid"`
	Reason string                `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error  string                `json:"error,omitempty" yaml:"error,omitempty"`
	Record *entity.ContactRecord `json:"record,omitempty" yaml:"record,omitempty"`
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a stored profile file the way the API loads it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read profile: %w", err)
			}

			res := validation.LoadOrDefault(raw, entity.DefaultContact())
			report := checkReport{File: args[0], Valid: !res.UsedDefault}
			if res.UsedDefault {
				report.Reason = repository.FallbackReason(res.Reason)
				report.Error = res.Reason.Error()
			} else {
				report.Record = &res.Record
			}

			if err := opts.write(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("%s would be replaced by the default profile (%s)", args[0], report.Reason)
			}
			return nil
		},
	}
}
