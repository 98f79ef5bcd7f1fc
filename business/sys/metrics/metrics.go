// Package metrics constructs the metrics the application will track.
package metrics

import (
	"errors"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/prometheus/client_golang/prometheus"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The prometheus collectors are safe for concurrent
// use so there is no need for locking.
var m = newMetrics(prometheus.DefaultRegisterer)

// metrics represents the set of metrics we gather. These fields are
// safe to be accessed concurrently.
type metrics struct {
	requests     prometheus.Counter
	errors       prometheus.Counter
	panics       prometheus.Counter
	blocksSealed prometheus.Counter
	exhausted    prometheus.Counter
	mempool      prometheus.Gauge
	mining       prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := metrics{
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powledger",
			Name:      "requests_total",
			Help:      "Number of web requests handled.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powledger",
			Name:      "errors_total",
			Help:      "Number of web requests that returned an error.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powledger",
			Name:      "panics_total",
			Help:      "Number of web requests that panicked.",
		}),
		blocksSealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powledger",
			Name:      "blocks_sealed_total",
			Help:      "Number of blocks mined and appended to the chain.",
		}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powledger",
			Name:      "mining_exhausted_total",
			Help:      "Number of mining operations that ran out of nonces.",
		}),
		mempool: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "powledger",
			Name:      "mempool_transactions",
			Help:      "Number of transactions waiting in the mempool.",
		}),
		mining: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "powledger",
			Name:      "mining_duration_seconds",
			Help:      "Time spent searching for a nonce.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	reg.MustRegister(m.requests, m.errors, m.panics, m.blocksSealed, m.exhausted, m.mempool, m.mining)

	return &m
}

// AddRequests increments the request count by 1.
func AddRequests() {
	m.requests.Inc()
}

// AddErrors increments the errors count by 1.
func AddErrors() {
	m.errors.Inc()
}

// AddPanics increments the panics count by 1.
func AddPanics() {
	m.panics.Inc()
}

// AddBlockSealed records a successful mining operation and how long it took.
func AddBlockSealed(seconds float64) {
	m.blocksSealed.Inc()
	m.mining.Observe(seconds)
}

// AddExhausted increments the exhausted mining count by 1.
func AddExhausted() {
	m.exhausted.Inc()
}

// AddMiningResult records the outcome of a mining operation. Cancelled
// operations are not counted.
func AddMiningResult(d time.Duration, err error) {
	switch {
	case err == nil:
		AddBlockSealed(d.Seconds())
	case errors.Is(err, database.ErrMiningExhausted):
		AddExhausted()
	}
}

// SetMempool records the current number of pending transactions.
func SetMempool(n int) {
	m.mempool.Set(float64(n))
}
