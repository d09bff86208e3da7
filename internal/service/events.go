package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/inventory/internal/metrics"
	"github.com/Skotchmaster/inventory/pkg/events"
	"github.com/Skotchmaster/inventory/pkg/logging"
)

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurredAt"`
}

type EquipmentEvent struct {
	Type         string    `json:"type"`
	EquipmentID  string    `json:"equipmentId"`
	Name         string    `json:"name,omitempty"`
	SerialNumber string    `json:"serialNumber,omitempty"`
	Status       string    `json:"status,omitempty"`
	AssignedTo   string    `json:"assignedTo,omitempty"`
	ActorID      string    `json:"actorId,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// publish logs and counts failures and never fails the caller.
func publish(ctx context.Context, p events.Publisher, m metrics.Recorder, topic, key string, event any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "key", key, "error", err)
		if m != nil {
			m.RecordPublishFailure(topic)
		}
	}
}
