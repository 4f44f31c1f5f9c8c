package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	transportReads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pumpctl",
			Subsystem: "transport",
			Name:      "reads_total",
			Help:      "Discrete transport reads consumed during reassembly.",
		},
	)
	framesReassembled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pumpctl",
			Subsystem: "protocol",
			Name:      "frames_reassembled_total",
			Help:      "Logical responses fully reassembled from transport reads.",
		},
	)
	integrityFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pumpctl",
			Subsystem: "protocol",
			Name:      "integrity_failures_total",
			Help:      "Responses rejected by an integrity check.",
		},
		[]string{"check"},
	)
	settingsRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pumpctl",
			Subsystem: "settings",
			Name:      "requests_total",
			Help:      "Settings enumeration requests by result.",
		},
		[]string{"result"},
	)
)

// Register installs the driver metrics on reg. Safe to call more than once;
// only the first call registers.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			transportReads,
			framesReassembled,
			integrityFailures,
			settingsRequests,
		)
	})
}

func ObserveTransportRead() { transportReads.Inc() }

func ObserveFrameReassembled() { framesReassembled.Inc() }

func ObserveIntegrityFailure(check string) {
	integrityFailures.WithLabelValues(check).Inc()
}

func ObserveSettingsRequest(result string) {
	settingsRequests.WithLabelValues(result).Inc()
}
