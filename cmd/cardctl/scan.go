package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/octobees/cardshare/internal/extract"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [image]",
		Short: "Extract contact details from a photo of a business card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			content, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			imageData, err := toDataURL(content)
			if err != nil {
				return err
			}

			adapter, err := extract.NewFromConfig(cmd.Context(), cfg.Vision, extract.WithLogger(opts.logger))
			if err != nil {
				return err
			}

			out := adapter.Scan(cmd.Context(), imageData, func(s extract.State) {
				opts.logger.Debug("scan state", "state", s.String())
			})
			if err := opts.write(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.Success {
				return fmt.Errorf("scan failed: %s", out.Error)
			}
			return nil
		},
	}
}

func toDataURL(content []byte) (string, error) {
	mediaType := http.DetectContentType(content)
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("input is %s, not an image", mediaType)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(content), nil
}
