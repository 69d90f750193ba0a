package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/octobees/cardshare/internal/auth"
	"github.com/octobees/cardshare/internal/service"
)

type tokenOutput struct {
	AccessToken string `json:"access_token" yaml:"access_token"`
	Role        string `json:"role" yaml:"role"`
	ExpiresAt   string `json:"expires_at" yaml:"expires_at"`
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		role    string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token, e.g. a read-only link for a viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}

			jwtManager := auth.NewJWTManager(cfg.JWTSecret, ttl)
			token, err := service.NewAuthService(cfg.OwnerEmail, cfg.OwnerPasswordHash, jwtManager).IssueToken(subject, role)
			if err != nil {
				return err
			}
			opts.logger.Debug("token issued", "role", role, "ttl", jwtManager.TTL())

			return opts.write(cmd.OutOrStdout(), tokenOutput{
				AccessToken: token,
				Role:        role,
				ExpiresAt:   time.Now().Add(jwtManager.TTL()).UTC().Format(time.RFC3339),
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", auth.RoleViewer, "Token role: owner or viewer")
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (defaults to the role)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_TTL)")
	return cmd
}
