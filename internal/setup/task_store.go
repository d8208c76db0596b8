package setup

import (
	"context"

	gormAdapter "github.com/bornholm/triage/internal/adapter/gorm"
	"github.com/bornholm/triage/internal/config"
	"github.com/bornholm/triage/internal/core/port"
	"github.com/pkg/errors"
)

var getTaskStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.TaskStore, error) {
	db, err := getGormDatabaseFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure database from config")
	}

	return gormAdapter.NewTaskStore(db), nil
})
