package setup

import (
	"context"

	"github.com/bornholm/triage/internal/config"
	"github.com/bornholm/triage/internal/core/service"
	"github.com/pkg/errors"
)

var getTaskManagerFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*service.TaskManager, error) {
	store, err := getTaskStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure task store from config")
	}

	taskManager := service.NewTaskManager(store, service.NewClassifier(),
		service.WithTaskManagerDefaultPagination(conf.Tasks.DefaultLimit, conf.Tasks.DefaultOffset),
	)

	return taskManager, nil
})
