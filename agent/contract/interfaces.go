package contract

import (
	"context"
	"encoding/json"
)

// Slots is the structured payload extracted from an utterance for one request
// type. Concrete slot types live in agent/classify.
type Slots interface {
	RequestType() string
}

type CustomerRepository interface {
	// Get returns ErrNotFound when no customer exists for the id.
	Get(ctx context.Context, customerID string) (*Customer, error)
}

type TierRepository interface {
	// Get returns ErrTierNotFound when the tier name is unknown.
	Get(ctx context.Context, tierName string) (*Tier, error)
}

type ConversationStore interface {
	// Append persists one turn. Failures never abort a response.
	Append(ctx context.Context, turn *ConversationTurn) error
}

// GenerationRequest carries the instruction block plus the structured context
// payload handed to the external response generator.
type GenerationRequest struct {
	Instructions string
	Payload      json.RawMessage
}

type Generator interface {
	// Generate returns natural-language text, or an error wrapping
	// ErrGeneration when the model call fails.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

type ActionExecutor interface {
	// Execute performs a permitted mutation against a customer's device and
	// reports what changed. Errors wrap ErrExecution.
	Execute(ctx context.Context, customer *Customer, device *Device, action string, slots Slots) (*ActionOutcome, error)
}
