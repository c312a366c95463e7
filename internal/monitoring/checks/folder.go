package checks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charlesng35/filecache/internal/monitoring"
)

// Folder returns a readiness probe that verifies the cache folder accepts new files.
func Folder(path string) monitoring.Check {
	return monitoring.NewCheck("cache_folder", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()

		info, err := os.Stat(path)
		if err != nil {
			return monitoring.ResultFromError("cache_folder", err, time.Since(start))
		}
		if !info.IsDir() {
			return monitoring.ResultFromError("cache_folder", fmt.Errorf("%s is not a directory", path), time.Since(start))
		}

		probe, err := os.CreateTemp(path, ".filecache-probe-*")
		if err != nil {
			return monitoring.ResultFromError("cache_folder", err, time.Since(start))
		}
		name := probe.Name()
		_ = probe.Close()
		if err := os.Remove(name); err != nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "probe file left behind: " + err.Error(),
				Duration: time.Since(start),
			}
		}

		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Duration: time.Since(start),
		}
	})
}
