package cache

import (
	"time"

	"github.com/charlesng35/filecache/pkg/metrics"
)

func observeLatency(operation string, start time.Time) {
	metrics.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func observeAdd(mode TransferMode, result string) {
	metrics.CacheAdds.WithLabelValues(mode.String(), result).Inc()
}

func observeLookup(result string) {
	metrics.CacheLookups.WithLabelValues(result).Inc()
}

func observeCollision() {
	metrics.CacheNameCollisions.Inc()
}

func observeEvictions(operation string, removed, failed int) {
	if removed > 0 {
		metrics.CacheEvictions.WithLabelValues(operation, "removed").Add(float64(removed))
	}
	if failed > 0 {
		metrics.CacheEvictions.WithLabelValues(operation, "failed").Add(float64(failed))
	}
}
