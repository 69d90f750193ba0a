package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/octobees/cardshare/internal/repository"
	"github.com/octobees/cardshare/internal/service"
	"github.com/octobees/cardshare/internal/storage"
)

func newVCardCmd(opts *rootOptions) *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "vcard",
		Short: "Print the stored profile as a vCard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if region == "" {
				region = cfg.PhoneRegion
			}

			store, closeStore, err := storage.Open(cmd.Context(), cfg.Storage, opts.logger)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := repository.NewProfileRepository(store, cfg.Storage.Slot, opts.logger, nil).Load(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), service.VCard(res.Record, region))
			return err
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "Default phone region (defaults to DEFAULT_PHONE_REGION)")
	return cmd
}
