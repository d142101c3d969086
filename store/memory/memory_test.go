package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

func TestCustomerRepoRoundTrip(t *testing.T) {
	t.Parallel()

	repo := NewCustomerRepo()
	ctx := context.Background()

	vol := 40
	customer := &contractx.Customer{
		ID:   "cust-1",
		Name: "Dana",
		Tier: "basic",
		Devices: []contractx.Device{{
			ID: "dev-1", Type: "smart speaker", Location: "living room",
			Power: contractx.PowerOn, Volume: &vol,
		}},
	}
	if err := repo.Upsert(ctx, customer); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, "cust-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Dana" || len(got.Devices) != 1 {
		t.Errorf("got = %+v", got)
	}

	// The returned copy is detached from the stored record.
	got.Devices[0].Location = "garage"
	again, _ := repo.Get(ctx, "cust-1")
	if again.Devices[0].Location != "living room" {
		t.Errorf("stored location = %q, caller mutation leaked", again.Devices[0].Location)
	}
}

func TestCustomerRepoNotFound(t *testing.T) {
	t.Parallel()

	repo := NewCustomerRepo()
	if _, err := repo.Get(context.Background(), "ghost"); !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestCustomerRepoRejectsInvalidDevice(t *testing.T) {
	t.Parallel()

	repo := NewCustomerRepo()
	bad := &contractx.Customer{
		ID: "cust-1",
		Devices: []contractx.Device{{
			ID: "dev-1", Playlist: []string{"a"}, CurrentSongIndex: 5,
		}},
	}
	if err := repo.Upsert(context.Background(), bad); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation for out-of-range song index", err)
	}
}

func TestTierRepo(t *testing.T) {
	t.Parallel()

	repo := NewTierRepo()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "basic"); !errors.Is(err, contractx.ErrTierNotFound) {
		t.Fatalf("error = %v, want ErrTierNotFound", err)
	}

	for _, tier := range []contractx.Tier{
		{Name: "premium", AllowedActions: []string{"volume_control"}},
		{Name: "basic", AllowedActions: []string{"device_status"}},
	} {
		tier := tier
		if err := repo.Upsert(ctx, &tier); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	got, err := repo.Get(ctx, "basic")
	if err != nil || got.Name != "basic" {
		t.Fatalf("Get() = (%+v, %v)", got, err)
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 || all[0].Name != "basic" || all[1].Name != "premium" {
		t.Errorf("All() = %+v, want name order", all)
	}
}

func TestTurnStoreConversationOrder(t *testing.T) {
	t.Parallel()

	store := NewTurnStore()
	ctx := context.Background()
	base := time.Now().UTC()

	turns := []contractx.ConversationTurn{
		{ID: "t2", ConversationID: "conv-1", Sender: contractx.SenderBot, Timestamp: base.Add(time.Second)},
		{ID: "t1", ConversationID: "conv-1", Sender: contractx.SenderUser, Timestamp: base},
		{ID: "x1", ConversationID: "conv-2", Sender: contractx.SenderUser, Timestamp: base},
	}
	for i := range turns {
		if err := store.Append(ctx, &turns[i]); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.Conversation(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t2" {
		t.Errorf("Conversation() = %+v, want t1 then t2", got)
	}

	empty, err := store.Conversation(ctx, "conv-none")
	if err != nil || len(empty) != 0 {
		t.Errorf("Conversation(none) = (%+v, %v), want empty", empty, err)
	}
}
