package extract

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"github.com/octobees/cardshare/internal/config"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// NewHTTPClient returns the client matching cfg.Auth:
//
//	apikey  - plain client, the key is sent by the adapter
//	google  - OAuth2 access tokens from Application Default Credentials
//	idtoken - Google-signed ID tokens with the gateway URL as audience
//
// None of them sets a timeout; scans are bounded by the request context.
func NewHTTPClient(ctx context.Context, cfg config.VisionConfig) (*http.Client, error) {
	switch cfg.Auth {
	case "", "apikey":
		return &http.Client{Transport: http.DefaultTransport}, nil
	case "google":
		client, _, err := htransport.NewClient(ctx, option.WithScopes(cloudPlatformScope))
		if err != nil {
			return nil, fmt.Errorf("google credentials for vision gateway: %w", err)
		}
		return client, nil
	case "idtoken":
		client, err := idtoken.NewClient(ctx, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("id token client for vision gateway: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported vision auth mode %q", cfg.Auth)
	}
}

// NewFromConfig wires an adapter with the client and key cfg asks for.
func NewFromConfig(ctx context.Context, cfg config.VisionConfig, opts ...Option) (*Adapter, error) {
	client, err := NewHTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	base := []Option{WithHTTPClient(client)}
	if cfg.Auth == "" || cfg.Auth == "apikey" {
		base = append(base, WithAPIKey(cfg.APIKey))
	}
	return New(cfg.BaseURL, cfg.Model, append(base, opts...)...), nil
}
