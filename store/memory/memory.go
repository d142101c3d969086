// Package memory holds the in-process store used for local development and
// tests. Data lives only as long as the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

type CustomerRepo struct {
	mu        sync.RWMutex
	customers map[string]contractx.Customer
}

func NewCustomerRepo() *CustomerRepo {
	return &CustomerRepo{customers: make(map[string]contractx.Customer)}
}

var _ contractx.CustomerRepository = (*CustomerRepo)(nil)

func (r *CustomerRepo) Get(ctx context.Context, customerID string) (*contractx.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("%w: customer %s", contractx.ErrNotFound, customerID)
	}
	// Copy so the caller's mutations never touch the stored record until the
	// next Upsert.
	out := customer
	out.Devices = append([]contractx.Device(nil), customer.Devices...)
	return &out, nil
}

func (r *CustomerRepo) Upsert(ctx context.Context, customer *contractx.Customer) error {
	for i := range customer.Devices {
		if err := customer.Devices[i].Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *customer
	stored.Devices = append([]contractx.Device(nil), customer.Devices...)
	r.customers[customer.ID] = stored
	return nil
}

type TierRepo struct {
	mu    sync.RWMutex
	tiers map[string]contractx.Tier
}

func NewTierRepo() *TierRepo {
	return &TierRepo{tiers: make(map[string]contractx.Tier)}
}

var _ contractx.TierRepository = (*TierRepo)(nil)

func (r *TierRepo) Get(ctx context.Context, tierName string) (*contractx.Tier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tier, ok := r.tiers[tierName]
	if !ok {
		return nil, fmt.Errorf("%w: tier %s", contractx.ErrTierNotFound, tierName)
	}
	out := tier
	out.AllowedActions = append([]string(nil), tier.AllowedActions...)
	return &out, nil
}

func (r *TierRepo) All(ctx context.Context) ([]contractx.Tier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tiers := make([]contractx.Tier, 0, len(r.tiers))
	for _, tier := range r.tiers {
		out := tier
		out.AllowedActions = append([]string(nil), tier.AllowedActions...)
		tiers = append(tiers, out)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Name < tiers[j].Name })
	return tiers, nil
}

func (r *TierRepo) Upsert(ctx context.Context, tier *contractx.Tier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *tier
	stored.AllowedActions = append([]string(nil), tier.AllowedActions...)
	r.tiers[tier.Name] = stored
	return nil
}

type TurnStore struct {
	mu    sync.RWMutex
	turns []contractx.ConversationTurn
}

func NewTurnStore() *TurnStore {
	return &TurnStore{}
}

var _ contractx.ConversationStore = (*TurnStore)(nil)

func (s *TurnStore) Append(ctx context.Context, turn *contractx.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, *turn)
	return nil
}

func (s *TurnStore) Conversation(ctx context.Context, conversationID string) ([]contractx.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []contractx.ConversationTurn
	for _, turn := range s.turns {
		if turn.ConversationID == conversationID {
			out = append(out, turn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
