// Package metrics exposes chat orchestration counters and responder latency to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chatdesk"

// Chat records orchestration events on its own registry.
type Chat struct {
	registry      *prometheus.Registry
	turns         *prometheus.CounterVec
	conversations prometheus.Counter
	responder     *prometheus.HistogramVec
}

// New registers the chat collectors plus Go and process collectors.
// provider labels responder observations.
func New(provider string) *Chat {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Chat{
		registry: reg,
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Chat turns handled, by outcome.",
		}, []string{"outcome"}),
		conversations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_created_total",
			Help:      "Conversations created by incoming chat messages.",
		}),
		responder: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "responder_duration_seconds",
			Help:        "Time spent waiting for the responder.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"provider": provider},
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.turns, m.conversations, m.responder)
	return m
}

// ConversationCreated counts a new conversation.
func (m *Chat) ConversationCreated() {
	m.conversations.Inc()
}

// ObserveResponder records one responder call.
func (m *Chat) ObserveResponder(elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.responder.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// TurnFinished counts a completed or failed turn.
func (m *Chat) TurnFinished(outcome string) {
	m.turns.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry.
func (m *Chat) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Chat) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
