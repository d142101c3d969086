package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	classifyx "github.com/nimbushome/support-agent/agent/classify"
	contractx "github.com/nimbushome/support-agent/agent/contract"
)

func testDevice() *contractx.Device {
	vol := 40
	return &contractx.Device{
		ID:       "dev-1",
		Type:     "smart speaker",
		Location: "living room",
		Power:    contractx.PowerOn,
		Volume:   &vol,
		Playlist: []string{"Golden Hour", "Night Drive", "Morning Light"},
	}
}

func testCustomer(device *contractx.Device) *contractx.Customer {
	c := &contractx.Customer{ID: "cust-1", Name: "Dana", Tier: "premium"}
	if device != nil {
		c.Devices = []contractx.Device{*device}
	}
	return c
}

func TestExecuteVolumeSet(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()

	outcome, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionVolumeControl,
		classifyx.VolumeSlots{Direction: classifyx.VolumeSet, Level: 70, HasLevel: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if outcome.NewVolume == nil || *outcome.NewVolume != 70 {
		t.Fatalf("outcome = %+v, want new volume 70", outcome)
	}
	if *device.Volume != 70 {
		t.Errorf("device volume = %d, want 70", *device.Volume)
	}
}

func TestExecuteVolumeDirectionAppliesDefaultStep(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())

	tests := []struct {
		direction string
		want      int
	}{
		{classifyx.VolumeUp, 40 + DefaultVolumeStep},
		{classifyx.VolumeDown, 40 - DefaultVolumeStep},
	}
	for _, tt := range tests {
		device := testDevice()
		outcome, err := e.Execute(context.Background(), testCustomer(device), device,
			classifyx.ActionVolumeControl, classifyx.VolumeSlots{Direction: tt.direction})
		if err != nil {
			t.Fatalf("Execute(%s) error = %v", tt.direction, err)
		}
		if *outcome.NewVolume != tt.want {
			t.Errorf("direction %s: volume = %d, want %d", tt.direction, *outcome.NewVolume, tt.want)
		}
	}
}

func TestExecuteVolumeClamps(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()
	*device.Volume = 95

	outcome, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionVolumeControl, classifyx.VolumeSlots{Direction: classifyx.VolumeUp})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if *outcome.NewVolume != 100 {
		t.Errorf("volume = %d, want clamped 100", *outcome.NewVolume)
	}
}

func TestExecuteVolumeWithoutVolumeControlFails(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()
	device.Volume = nil

	_, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionVolumeControl, classifyx.VolumeSlots{Direction: classifyx.VolumeUp})
	if !errors.Is(err, contractx.ErrExecution) {
		t.Fatalf("error = %v, want ErrExecution", err)
	}
}

func TestExecuteSongNextWrapsAround(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()
	device.CurrentSongIndex = 2 // last track

	outcome, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionSongChanges, classifyx.SongSlots{Action: classifyx.SongNext})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if outcome.NewSong != "Golden Hour" || device.CurrentSongIndex != 0 {
		t.Errorf("outcome = %+v index = %d, want wrap to Golden Hour", outcome, device.CurrentSongIndex)
	}
}

func TestExecuteSongPreviousWrapsAround(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()
	device.CurrentSongIndex = 0

	outcome, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionSongChanges, classifyx.SongSlots{Action: classifyx.SongPrevious})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if outcome.NewSong != "Morning Light" || device.CurrentSongIndex != 2 {
		t.Errorf("outcome = %+v index = %d, want wrap to Morning Light", outcome, device.CurrentSongIndex)
	}
}

func TestExecuteSongPlayNamed(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()

	outcome, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionSongChanges,
		classifyx.SongSlots{Action: classifyx.SongPlay, RequestedSong: "night drive"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if outcome.NewSong != "Night Drive" {
		t.Errorf("new song = %q, want Night Drive (case-insensitive lookup)", outcome.NewSong)
	}

	_, err = e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionSongChanges,
		classifyx.SongSlots{Action: classifyx.SongPlay, RequestedSong: "not on the list"})
	if !errors.Is(err, contractx.ErrExecution) {
		t.Fatalf("error = %v, want ErrExecution for unknown title", err)
	}
}

func TestExecuteSongWithoutPlaylistFails(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()
	device.Playlist = nil

	_, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionSongChanges, classifyx.SongSlots{Action: classifyx.SongNext})
	if !errors.Is(err, contractx.ErrExecution) {
		t.Fatalf("error = %v, want ErrExecution", err)
	}
}

func TestExecutePowerTogglesWithoutTarget(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()

	if _, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionDevicePower, classifyx.PowerSlots{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if device.Power != contractx.PowerOff {
		t.Errorf("power = %s, want toggled off", device.Power)
	}
}

func TestExecutePowerExplicitTarget(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()

	if _, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionDevicePower,
		classifyx.PowerSlots{TargetState: contractx.PowerOn}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if device.Power != contractx.PowerOn {
		t.Errorf("power = %s, want on", device.Power)
	}
}

func TestExecuteRelocation(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()

	outcome, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionDeviceRelocation,
		classifyx.RelocationSlots{Destination: "bedroom"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if outcome.NewLocation != "bedroom" || device.Location != "bedroom" {
		t.Errorf("location = %q, want bedroom", device.Location)
	}

	_, err = e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionDeviceRelocation, classifyx.RelocationSlots{})
	if !errors.Is(err, contractx.ErrExecution) {
		t.Fatalf("error = %v, want ErrExecution without destination", err)
	}
}

func TestExecuteStatusDescribesDevice(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()

	outcome, err := e.Execute(context.Background(), testCustomer(device), device,
		classifyx.ActionDeviceStatus, classifyx.StatusSlots{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if outcome.Description == "" || outcome.DeviceID != "dev-1" {
		t.Errorf("outcome = %+v, want a description for dev-1", outcome)
	}
}

func TestExecuteUnsupportedAction(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	device := testDevice()

	_, err := e.Execute(context.Background(), testCustomer(device), device, "time_travel", nil)
	if !errors.Is(err, contractx.ErrExecution) {
		t.Fatalf("error = %v, want ErrExecution", err)
	}
}
