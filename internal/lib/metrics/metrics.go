// Package metrics счетчики Prometheus, которые отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DoorPresses попытки открыть дверь по результату.
	DoorPresses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sps",
		Name:      "door_presses_total",
		Help:      "Door open attempts by result.",
	}, []string{"result"})

	// ContactSyncMessages обработанные сообщения синхронизации контактов.
	ContactSyncMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sps",
		Name:      "contact_sync_messages_total",
		Help:      "Contact sync messages by type and outcome.",
	}, []string{"type", "outcome"})

	// ScheduledEvents встречи, созданные еженедельным заданием.
	ScheduledEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sps",
		Name:      "scheduled_events_total",
		Help:      "Events created or skipped by the weekly job.",
	}, []string{"result"})
)
