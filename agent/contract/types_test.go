package contract

import (
	"errors"
	"testing"
)

func TestDeviceValidate(t *testing.T) {
	t.Parallel()

	vol := 50
	ok := Device{ID: "d1", Power: PowerOn, Volume: &vol, Playlist: []string{"a", "b"}, CurrentSongIndex: 1}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	badVol := 120
	tests := []struct {
		name   string
		device Device
	}{
		{"volume above range", Device{ID: "d1", Volume: &badVol}},
		{"song index past playlist", Device{ID: "d1", Playlist: []string{"a"}, CurrentSongIndex: 1}},
		{"negative song index", Device{ID: "d1", Playlist: []string{"a"}, CurrentSongIndex: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.device.Validate(); !errors.Is(err, ErrValidation) {
				t.Fatalf("Validate() = %v, want ErrValidation", err)
			}
		})
	}

	// No playlist: the index is ignored entirely.
	idle := Device{ID: "d1", CurrentSongIndex: 7}
	if err := idle.Validate(); err != nil {
		t.Fatalf("Validate() without playlist error = %v", err)
	}
}

func TestDeviceCurrentSong(t *testing.T) {
	t.Parallel()

	d := Device{Playlist: []string{"Golden Hour", "Night Drive"}, CurrentSongIndex: 1}
	song, ok := d.CurrentSong()
	if !ok || song != "Night Drive" {
		t.Fatalf("CurrentSong() = (%q, %v)", song, ok)
	}

	if _, ok := (&Device{}).CurrentSong(); ok {
		t.Fatal("CurrentSong() on empty playlist should report false")
	}
}

func TestTierAllows(t *testing.T) {
	t.Parallel()

	tier := Tier{Name: "basic", AllowedActions: []string{"device_status"}}
	if !tier.Allows("device_status") || tier.Allows("volume_control") {
		t.Fatal("membership check broken")
	}
}
