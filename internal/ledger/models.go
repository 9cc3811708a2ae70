package ledger

import "time"

// Event is an immutable, append-only billing fact.
//
// Invariants:
// - Events are never updated or deleted once created.
// - TenantID is required; AccountID empty means tenant-wide.
// - (tenant_id, account_id, external_reference_id) is unique; for
//   tenant-wide events the uniqueness is scoped to (tenant_id,
//   external_reference_id) among empty-account rows.
// - Metadata keys are restricted to an allow-list (see AllowedMetadataKey).
type Event struct {
	ID        string `json:"id" db:"id"`
	TenantID  string `json:"tenant_id" db:"tenant_id"`
	AccountID string `json:"account_id,omitempty" db:"account_id"`
	ProgramID string `json:"program_id,omitempty" db:"program_id"`

	EventType EventType `json:"event_type" db:"event_type"`

	// ExternalReferenceID is the caller-supplied idempotency key for
	// ingestion. Re-ingesting the same reference returns the existing event.
	ExternalReferenceID string `json:"external_reference_id" db:"external_reference_id"`

	Metadata map[string]string `json:"metadata,omitempty" db:"metadata"`

	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type EventType string

// Known business events. Keep these stable; pricing rules reference them.
const (
	EventTypeShipmentCreated    EventType = "ShipmentCreated"
	EventTypeShipmentDispatched EventType = "ShipmentDispatched"
	EventTypeShipmentDelivered  EventType = "ShipmentDelivered"
	EventTypeOrderCreated       EventType = "OrderCreated"
	EventTypeOrderCancelled     EventType = "OrderCancelled"
	EventTypeReturnProcessed    EventType = "ReturnProcessed"
	EventTypeStockAdjusted      EventType = "StockAdjusted"
	EventTypePickCompleted      EventType = "PickCompleted"
	EventTypePackCompleted      EventType = "PackCompleted"
	EventTypeStorageAudited     EventType = "StorageAudited"
)

var knownEventTypes = map[EventType]struct{}{
	EventTypeShipmentCreated:    {},
	EventTypeShipmentDispatched: {},
	EventTypeShipmentDelivered:  {},
	EventTypeOrderCreated:       {},
	EventTypeOrderCancelled:     {},
	EventTypeReturnProcessed:    {},
	EventTypeStockAdjusted:      {},
	EventTypePickCompleted:      {},
	EventTypePackCompleted:      {},
	EventTypeStorageAudited:     {},
}

// IsKnownEventType reports whether t is one of the supported business events.
func IsKnownEventType(t EventType) bool {
	_, ok := knownEventTypes[t]
	return ok
}

var allowedMetadataKeys = map[string]struct{}{
	"order_ref":      {},
	"carrier":        {},
	"warehouse_code": {},
	"channel":        {},
	"sku":            {},
	"notes":          {},
}

// AllowedMetadataKey reports whether k may appear in event metadata.
func AllowedMetadataKey(k string) bool {
	_, ok := allowedMetadataKeys[k]
	return ok
}
