package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/uptrace/bun"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

type CustomerRepo struct {
	db *bun.DB
}

func NewCustomerRepo(db *bun.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

var _ contractx.CustomerRepository = (*CustomerRepo)(nil)

func (r *CustomerRepo) Get(ctx context.Context, customerID string) (*contractx.Customer, error) {
	row := new(customerRow)
	err := r.db.NewSelect().Model(row).Where("id = ?", customerID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s", contractx.ErrNotFound, customerID)
		}
		return nil, fmt.Errorf("postgres: get customer %s: %w", customerID, err)
	}
	return row.toContract(), nil
}

// Upsert writes a customer and its embedded devices; seeding and device
// registration both go through here.
func (r *CustomerRepo) Upsert(ctx context.Context, customer *contractx.Customer) error {
	for i := range customer.Devices {
		if err := customer.Devices[i].Validate(); err != nil {
			return err
		}
	}
	_, err := r.db.NewInsert().Model(customerRowFrom(customer)).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("tier = EXCLUDED.tier").
		Set("devices = EXCLUDED.devices").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("postgres: upsert customer %s: %w", customer.ID, err)
	}
	return nil
}

type TierRepo struct {
	db *bun.DB
}

func NewTierRepo(db *bun.DB) *TierRepo {
	return &TierRepo{db: db}
}

var _ contractx.TierRepository = (*TierRepo)(nil)

func (r *TierRepo) Get(ctx context.Context, tierName string) (*contractx.Tier, error) {
	row := new(tierRow)
	err := r.db.NewSelect().Model(row).Where("name = ?", tierName).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: tier %s", contractx.ErrTierNotFound, tierName)
		}
		return nil, fmt.Errorf("postgres: get tier %s: %w", tierName, err)
	}
	return row.toContract(), nil
}

// All returns every tier, ordered by name. The prompt context builder uses
// the full catalog to name the minimal unlocking tier.
func (r *TierRepo) All(ctx context.Context) ([]contractx.Tier, error) {
	var rows []tierRow
	if err := r.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("postgres: list tiers: %w", err)
	}
	tiers := make([]contractx.Tier, 0, len(rows))
	for i := range rows {
		tiers = append(tiers, *rows[i].toContract())
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Name < tiers[j].Name })
	return tiers, nil
}

func (r *TierRepo) Upsert(ctx context.Context, tier *contractx.Tier) error {
	_, err := r.db.NewInsert().Model(&tierRow{Name: tier.Name, AllowedActions: tier.AllowedActions}).
		On("CONFLICT (name) DO UPDATE").
		Set("allowed_actions = EXCLUDED.allowed_actions").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("postgres: upsert tier %s: %w", tier.Name, err)
	}
	return nil
}

type TurnStore struct {
	db *bun.DB
}

func NewTurnStore(db *bun.DB) *TurnStore {
	return &TurnStore{db: db}
}

var _ contractx.ConversationStore = (*TurnStore)(nil)

func (s *TurnStore) Append(ctx context.Context, turn *contractx.ConversationTurn) error {
	if _, err := s.db.NewInsert().Model(turnRowFrom(turn)).Exec(ctx); err != nil {
		return fmt.Errorf("postgres: append turn %s: %w", turn.ID, err)
	}
	return nil
}

// Conversation returns a conversation's turns in chronological order.
func (s *TurnStore) Conversation(ctx context.Context, conversationID string) ([]contractx.ConversationTurn, error) {
	var rows []turnRow
	err := s.db.NewSelect().Model(&rows).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: load conversation %s: %w", conversationID, err)
	}
	turns := make([]contractx.ConversationTurn, 0, len(rows))
	for i := range rows {
		turns = append(turns, *rows[i].toContract())
	}
	return turns, nil
}
