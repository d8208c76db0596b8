package setup

import (
	"context"

	"github.com/bornholm/triage/internal/config"
	"github.com/bornholm/triage/internal/http/handler/api"
	"github.com/pkg/errors"
)

func getAPIHandlerFromConfig(ctx context.Context, conf *config.Config) (*api.Handler, error) {
	taskManager, err := getTaskManagerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	handler := api.NewHandler(taskManager)

	return handler, nil
}
