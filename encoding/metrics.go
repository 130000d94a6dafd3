package encoding

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Directions of a negotiation.
const (
	DirectionRequest  = "request"
	DirectionResponse = "response"
)

// Results recorded for a negotiation.
const (
	resultOK                   = "ok"
	resultEmptyBody            = "empty_body"
	resultUnsupportedMediaType = "unsupported_media_type"
	resultNotAcceptable        = "not_acceptable"
	resultDecodeError          = "decode_error"
	resultContractViolation    = "contract_violation"
)

// Label used when no negotiator was selected.
const noMimeType = "none"

// Metrics holds the Prometheus counters of an Engine.
type Metrics struct {
	negotiationsTotal *prometheus.CounterVec
	codecErrorsTotal  *prometheus.CounterVec
}

// NewMetrics creates the engine counters and registers them with registerer. A nil
// registerer leaves them unregistered. Registering twice with the same registerer
// panics, so build one Metrics per registry and share it between engines.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		negotiationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spanroutes",
				Name:      "negotiation_total",
				Help:      "Total number of content negotiations",
			},
			[]string{"direction", "mime_type", "result"},
		),
		codecErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spanroutes",
				Name:      "codec_errors_total",
				Help:      "Total number of negotiator encode / decode failures",
			},
			[]string{"mime_type", "operation"},
		),
	}
}

func (metrics *Metrics) recordNegotiation(direction, mimeType, result string) {
	if metrics == nil {
		return
	}
	if mimeType == "" {
		mimeType = noMimeType
	}
	metrics.negotiationsTotal.WithLabelValues(direction, mimeType, result).Inc()
}

func (metrics *Metrics) recordCodecError(mimeType, operation string) {
	if metrics == nil {
		return
	}
	metrics.codecErrorsTotal.WithLabelValues(mimeType, operation).Inc()
}
