package setup

import (
	"context"

	"github.com/bornholm/triage/internal/config"
	"github.com/bornholm/triage/internal/http"
	"github.com/bornholm/triage/internal/http/handler/metrics"
	"github.com/pkg/errors"
)

func NewHTTPServerFromConfig(ctx context.Context, conf *config.Config) (*http.Server, error) {
	api, err := getAPIHandlerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure api handler from config")
	}

	options := []http.OptionFunc{
		http.WithAddress(conf.HTTP.Address),
		http.WithBaseURL(conf.HTTP.BaseURL),
		http.WithAllowedOrigins(conf.HTTP.AllowedOrigins...),
		http.WithMount("/api/v1/", api),
		http.WithMount("/metrics/", metrics.NewHandler()),
	}

	if conf.HTTP.Auth.Username != "" {
		options = append(options, http.WithBasicAuth(&http.BasicAuth{
			Username: conf.HTTP.Auth.Username,
			Password: conf.HTTP.Auth.Password,
		}))
	}

	server := http.NewServer(options...)

	return server, nil
}
