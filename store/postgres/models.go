package postgres

import (
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

// Devices are embedded in their owning customer, so the row keeps them as a
// jsonb column instead of a join table.
type customerRow struct {
	bun.BaseModel `bun:"table:customers"`

	ID      string             `bun:"id,pk"`
	Name    string             `bun:"name,notnull"`
	Tier    string             `bun:"tier,notnull"`
	Devices []contractx.Device `bun:"devices,type:jsonb"`
}

type tierRow struct {
	bun.BaseModel `bun:"table:tiers"`

	Name           string   `bun:"name,pk"`
	AllowedActions []string `bun:"allowed_actions,type:jsonb"`
}

type turnRow struct {
	bun.BaseModel `bun:"table:conversation_turns"`

	ID               string    `bun:"id,pk"`
	ConversationID   string    `bun:"conversation_id,notnull"`
	CustomerID       string    `bun:"customer_id,notnull"`
	Sender           string    `bun:"sender,notnull"`
	Text             string    `bun:"text,notnull"`
	Timestamp        time.Time `bun:"timestamp,notnull"`
	RequestType      string    `bun:"request_type,nullzero"`
	ActionsAllowed   *bool     `bun:"actions_allowed"`
	GenerationFailed bool      `bun:"generation_failed"`
}

func (r *customerRow) toContract() *contractx.Customer {
	return &contractx.Customer{
		ID:      r.ID,
		Name:    r.Name,
		Tier:    r.Tier,
		Devices: r.Devices,
	}
}

func customerRowFrom(c *contractx.Customer) *customerRow {
	return &customerRow{
		ID:      c.ID,
		Name:    c.Name,
		Tier:    c.Tier,
		Devices: c.Devices,
	}
}

func (r *tierRow) toContract() *contractx.Tier {
	return &contractx.Tier{
		Name:           r.Name,
		AllowedActions: r.AllowedActions,
	}
}

func turnRowFrom(t *contractx.ConversationTurn) *turnRow {
	return &turnRow{
		ID:               t.ID,
		ConversationID:   t.ConversationID,
		CustomerID:       t.CustomerID,
		Sender:           string(t.Sender),
		Text:             t.Text,
		Timestamp:        t.Timestamp,
		RequestType:      t.RequestType,
		ActionsAllowed:   t.ActionsAllowed,
		GenerationFailed: t.GenerationFailed,
	}
}

func (r *turnRow) toContract() *contractx.ConversationTurn {
	return &contractx.ConversationTurn{
		ID:               r.ID,
		ConversationID:   r.ConversationID,
		CustomerID:       r.CustomerID,
		Sender:           contractx.Sender(r.Sender),
		Text:             r.Text,
		Timestamp:        r.Timestamp,
		RequestType:      r.RequestType,
		ActionsAllowed:   r.ActionsAllowed,
		GenerationFailed: r.GenerationFailed,
	}
}
