package server

import (
	"context"
	"strconv"

	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/logger"
	service "github.com/oshokin/app-version/internal/service/version"
)

// versionMetrics is the part of observability.Metrics fed by version events.
type versionMetrics interface {
	ObserveEvent(ctx context.Context, event domain.Event)
	SetVersion(major, minor, patch int)
}

// watchVersion publishes the current version now and after every event.
func watchVersion(ctx context.Context, manager *service.Manager, metrics versionMetrics) {
	publishVersion(ctx, manager, metrics)

	manager.Events().Subscribe(metrics.ObserveEvent)
	manager.Events().Subscribe(func(ctx context.Context, event domain.Event) {
		logger.DebugKV(ctx, "Version event", "event", event.Short())
		publishVersion(ctx, manager, metrics)
	})
}

// publishVersion copies the version numbers of the record into the gauges.
func publishVersion(ctx context.Context, manager *service.Manager, metrics versionMetrics) {
	snapshot, err := manager.Snapshot()
	if err != nil {
		logger.WarnKV(ctx, "Cannot read version for metrics", "error", err)

		return
	}

	current, _ := snapshot["current"].(map[string]any)

	metrics.SetVersion(number(current["major"]), number(current["minor"]), number(current["patch"]))
}

// number converts a decoded YAML scalar to an int, treating anything else as zero.
func number(value any) int {
	switch typed := value.(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case uint64:
		return int(typed)
	case float64:
		return int(typed)
	case string:
		parsed, _ := strconv.Atoi(typed)

		return parsed
	default:
		return 0
	}
}
