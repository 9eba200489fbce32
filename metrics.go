package capsule

import "github.com/xraph/go-utils/metrics"

// met is the package-level metrics seam, mirroring the teacher's
// GetMetrics/metrics.Metrics seam (teacher's helpers.go). Defaults to a
// no-op collector.
var met metrics.Metrics = noopMetrics{}

// SetMetrics replaces the package-level metrics collector. The only
// metric recorded is the "capsule.provider.closed" count from
// Provider.Close, tagged with whether a leak was found; resolutions,
// shared-slot initializations and validator failures are not counted.
func SetMetrics(m metrics.Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	met = m
}

type noopMetrics struct{}

func (noopMetrics) Count(string, int64, ...string) {}
func (noopMetrics) Gauge(string, float64, ...string) {}
