// Package events publishes domain events about properties and maintenance
// records to a RabbitMQ topic exchange.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types, also used as routing keys
const (
	PropertyUpdated    = "property.updated"
	MaintenanceCreated = "maintenance.created"
)

// Producer identifies this service in event metadata
const Producer = "lpms-api"

// Meta describes an event independent of its payload
type Meta struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	CorrelationID *string   `json:"correlation_id,omitempty"`
	Producer      *string   `json:"producer,omitempty"`
	Time          time.Time `json:"time"`
}

// Envelope is the wire form of an event
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// NewEnvelope stamps data with a fresh event ID and the current time.
// An empty correlation ID is omitted.
func NewEnvelope(eventType, correlationID string, data any) Envelope {
	producer := Producer
	meta := Meta{
		ID:       uuid.NewString(),
		Type:     eventType,
		Producer: &producer,
		Time:     time.Now().UTC(),
	}
	if correlationID != "" {
		meta.CorrelationID = &correlationID
	}
	return Envelope{Meta: meta, Data: data}
}
