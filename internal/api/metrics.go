package api

import (
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
)

// Metrics counts requests per endpoint and status and records latency.
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solarmon",
			Name:      "api_requests_total",
			Help:      "Monitoring API requests by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "solarmon",
			Name:      "api_request_duration_seconds",
			Help:      "Monitoring API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	for _, c := range []prometheus.Collector{m.Requests, m.Latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(name endpoint.Name, resp *resty.Response, elapsed time.Duration) {
	if m == nil {
		return
	}

	status := "error"
	if resp != nil && resp.StatusCode() != 0 {
		status = strconv.Itoa(resp.StatusCode())
	}
	m.Requests.WithLabelValues(string(name), status).Inc()
	m.Latency.WithLabelValues(string(name)).Observe(elapsed.Seconds())
}
