package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTotalCreatedTasks           = "total_created_tasks"
	NameTotalUpdatedTasks           = "total_updated_tasks"
	NameTotalDeletedTasks           = "total_deleted_tasks"
	NameTotalClassificationPreviews = "total_classification_previews"
	LabelCategory                   = "category"
)

var TotalCreatedTasks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalCreatedTasks,
		Help:      "Total created tasks",
		Namespace: Namespace,
	},
	[]string{LabelCategory},
)

var TotalUpdatedTasks = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalUpdatedTasks,
		Help:      "Total updated tasks",
		Namespace: Namespace,
	},
)

var TotalDeletedTasks = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalDeletedTasks,
		Help:      "Total deleted tasks",
		Namespace: Namespace,
	},
)

var TotalClassificationPreviews = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalClassificationPreviews,
		Help:      "Total classification previews",
		Namespace: Namespace,
	},
)
