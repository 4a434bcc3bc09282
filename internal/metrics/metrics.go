// Package metrics exposes the service's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	ProposalsSubmitted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "talentlink",
		Name:      "proposals_submitted_total",
		Help:      "Proposals accepted into the store.",
	})

	// ProposalTransitions counts proposals leaving pending, by new status.
	ProposalTransitions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talentlink",
		Name:      "proposal_transitions_total",
		Help:      "Proposal status transitions.",
	}, []string{"status"})

	ContractsCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "talentlink",
		Name:      "contracts_created_total",
		Help:      "Contracts created by proposal acceptance.",
	})

	NotificationsSent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talentlink",
		Name:      "notifications_sent_total",
		Help:      "Notifications appended, by kind.",
	}, []string{"kind"})

	NotificationFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talentlink",
		Name:      "notification_failures_total",
		Help:      "Fan-out failures, by stage (store or push).",
	}, []string{"stage"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
