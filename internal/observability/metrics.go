package observability

import (
	"io"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Packet outcomes.
const (
	OutcomeModified  = "modified"
	OutcomeUnchanged = "unchanged"
	OutcomeError     = "error"
)

var (
	registerOnce sync.Once

	interceptedPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "protoedit",
			Subsystem: "intercept",
			Name:      "packets_total",
			Help:      "Packets seen by interceptors.",
		},
		[]string{"direction", "outcome"},
	)
	interceptChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "protoedit",
			Subsystem: "intercept",
			Name:      "changes_total",
			Help:      "Elementary field changes applied by rules.",
		},
		[]string{"direction", "rule"},
	)
	packetBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "protoedit",
			Subsystem: "intercept",
			Name:      "packet_bytes",
			Help:      "Size of intercepted packets in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
		[]string{"direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(interceptedPackets, interceptChanges, packetBytes)
	})
}

func RecordPacket(direction, outcome string, size int) {
	RegisterMetrics()
	interceptedPackets.WithLabelValues(direction, outcome).Inc()
	packetBytes.WithLabelValues(direction).Observe(float64(size))
}

func RecordChanges(direction, rule string, changes int) {
	if changes <= 0 {
		return
	}
	RegisterMetrics()
	interceptChanges.WithLabelValues(direction, rule).Add(float64(changes))
}

// WriteText writes the protoedit metric families from the default gatherer
// in the prometheus text exposition format.
func WriteText(w io.Writer) error {
	RegisterMetrics()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "protoedit_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
