// Package metrics holds the Prometheus collectors for combell-mcp.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "combell_mcp"

// Tool call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector records upstream, tool and auth activity. A nil *Collector is
// valid and records nothing.
type Collector struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	toolCalls        *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
	authRejections   *prometheus.CounterVec
}

// NewCollector registers all collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the Combell API by resource and status code.",
		}, []string{"resource", "code"}),
		upstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of Combell API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Wall time of MCP tool invocations.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tool"}),
		authRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_rejections_total",
			Help:      "Requests rejected by the credential gate by reason.",
		}, []string{"reason"}),
	}
}

// ObserveUpstream records one Combell API request. code is 0 for transport failures.
func (c *Collector) ObserveUpstream(resource string, code int, elapsed time.Duration) {
	if c == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	c.upstreamRequests.WithLabelValues(resource, label).Inc()
	c.upstreamDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
}

// ObserveTool records one tool invocation.
func (c *Collector) ObserveTool(tool, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.toolCalls.WithLabelValues(tool, outcome).Inc()
	c.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// AuthRejected counts a request turned away by the credential gate.
func (c *Collector) AuthRejected(reason string) {
	if c == nil {
		return
	}
	c.authRejections.WithLabelValues(reason).Inc()
}
