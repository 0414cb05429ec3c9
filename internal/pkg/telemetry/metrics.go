package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"
	MetricEditsPerSec    = "editor.edits_per_second"

	// Freshness
	MetricMirrorLag = "persister.mirror_lag_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricBoardsActive   = "business.boards_active"
	MetricSnapshotsTaken = "business.snapshots_taken"
)
