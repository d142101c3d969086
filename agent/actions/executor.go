// Package actions implements the default ActionExecutor: it applies
// already-permitted mutations to a customer's device and reports exactly
// what changed. Permission decisions never happen here.
package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	classifyx "github.com/nimbushome/support-agent/agent/classify"
	contractx "github.com/nimbushome/support-agent/agent/contract"
)

// DefaultVolumeStep is applied when a volume request carries a direction but
// no explicit level.
const DefaultVolumeStep = 10

type Executor struct {
	logger zerolog.Logger
}

func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{logger: logger}
}

var _ contractx.ActionExecutor = (*Executor)(nil)

func (e *Executor) Execute(
	ctx context.Context,
	customer *contractx.Customer,
	device *contractx.Device,
	action string,
	slots contractx.Slots,
) (*contractx.ActionOutcome, error) {
	if customer == nil {
		return nil, fmt.Errorf("%w: customer is required", contractx.ErrExecution)
	}

	var (
		outcome *contractx.ActionOutcome
		err     error
	)
	switch action {
	case classifyx.ActionDeviceStatus:
		outcome, err = e.describeStatus(device)
	case classifyx.ActionDevicePower:
		outcome, err = e.setPower(device, slots)
	case classifyx.ActionVolumeControl:
		outcome, err = e.changeVolume(device, slots)
	case classifyx.ActionSongChanges:
		outcome, err = e.changeSong(device, slots)
	case classifyx.ActionDeviceRelocation:
		outcome, err = e.relocate(device, slots)
	case classifyx.ActionMultiRoomSetup:
		outcome, err = e.describeMultiRoom(customer, slots)
	case classifyx.ActionCustomRoutine:
		outcome, err = e.describeRoutine(slots)
	default:
		return nil, fmt.Errorf("%w: unsupported action %q", contractx.ErrExecution, action)
	}
	if err != nil {
		e.logger.Warn().Err(err).
			Str("customer_id", customer.ID).
			Str("action", action).
			Msg("action execution failed")
		return nil, err
	}
	return outcome, nil
}

func (e *Executor) describeStatus(device *contractx.Device) (*contractx.ActionOutcome, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: no device to report on", contractx.ErrExecution)
	}
	desc := fmt.Sprintf("%s in the %s is %s", device.Type, device.Location, device.Power)
	if device.Volume != nil {
		desc += fmt.Sprintf(" at volume %d", *device.Volume)
	}
	if song, ok := device.CurrentSong(); ok {
		desc += fmt.Sprintf(", playing %q", song)
	}
	return &contractx.ActionOutcome{
		Action:      classifyx.ActionDeviceStatus,
		DeviceID:    device.ID,
		Description: desc,
	}, nil
}

func (e *Executor) setPower(device *contractx.Device, slots contractx.Slots) (*contractx.ActionOutcome, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: no device to switch", contractx.ErrExecution)
	}
	target := contractx.PowerOn
	if ps, ok := slots.(classifyx.PowerSlots); ok && ps.TargetState != "" {
		target = ps.TargetState
	} else if device.Power == contractx.PowerOn {
		target = contractx.PowerOff
	}
	device.Power = target
	return &contractx.ActionOutcome{
		Action:      classifyx.ActionDevicePower,
		DeviceID:    device.ID,
		Description: fmt.Sprintf("%s switched %s", device.Type, target),
	}, nil
}

func (e *Executor) changeVolume(device *contractx.Device, slots contractx.Slots) (*contractx.ActionOutcome, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: no device to adjust", contractx.ErrExecution)
	}
	if device.Volume == nil {
		return nil, fmt.Errorf("%w: device %s has no volume control", contractx.ErrExecution, device.ID)
	}
	vs, ok := slots.(classifyx.VolumeSlots)
	if !ok {
		return nil, fmt.Errorf("%w: volume slots are required", contractx.ErrExecution)
	}

	old := *device.Volume
	next := old
	switch {
	case vs.HasLevel:
		next = vs.Level
	case vs.Direction == classifyx.VolumeDown:
		next = old - DefaultVolumeStep
	default:
		next = old + DefaultVolumeStep
	}
	next = clampVolume(next)
	*device.Volume = next

	return &contractx.ActionOutcome{
		Action:      classifyx.ActionVolumeControl,
		DeviceID:    device.ID,
		Description: fmt.Sprintf("volume changed from %d to %d", old, next),
		NewVolume:   &next,
	}, nil
}

func (e *Executor) changeSong(device *contractx.Device, slots contractx.Slots) (*contractx.ActionOutcome, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: no device to control playback on", contractx.ErrExecution)
	}
	if len(device.Playlist) == 0 {
		return nil, fmt.Errorf("%w: device %s has no playlist", contractx.ErrExecution, device.ID)
	}
	ss, ok := slots.(classifyx.SongSlots)
	if !ok {
		return nil, fmt.Errorf("%w: song slots are required", contractx.ErrExecution)
	}

	n := len(device.Playlist)
	switch ss.Action {
	case classifyx.SongNext:
		device.CurrentSongIndex = (device.CurrentSongIndex + 1) % n
	case classifyx.SongPrevious:
		device.CurrentSongIndex = (device.CurrentSongIndex - 1 + n) % n
	case classifyx.SongPlay:
		idx := -1
		for i, title := range device.Playlist {
			if strings.EqualFold(title, ss.RequestedSong) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q is not on the playlist", contractx.ErrExecution, ss.RequestedSong)
		}
		device.CurrentSongIndex = idx
	default:
		return nil, fmt.Errorf("%w: unsupported song action %q", contractx.ErrExecution, ss.Action)
	}

	song, _ := device.CurrentSong()
	return &contractx.ActionOutcome{
		Action:      classifyx.ActionSongChanges,
		DeviceID:    device.ID,
		Description: fmt.Sprintf("now playing %q", song),
		NewSong:     song,
	}, nil
}

func (e *Executor) relocate(device *contractx.Device, slots contractx.Slots) (*contractx.ActionOutcome, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: no device to move", contractx.ErrExecution)
	}
	rs, ok := slots.(classifyx.RelocationSlots)
	if !ok || rs.Destination == "" {
		return nil, fmt.Errorf("%w: relocation needs a destination room", contractx.ErrExecution)
	}
	old := device.Location
	device.Location = rs.Destination
	return &contractx.ActionOutcome{
		Action:      classifyx.ActionDeviceRelocation,
		DeviceID:    device.ID,
		Description: fmt.Sprintf("%s moved from %s to %s", device.Type, old, rs.Destination),
		NewLocation: rs.Destination,
	}, nil
}

func (e *Executor) describeMultiRoom(customer *contractx.Customer, slots contractx.Slots) (*contractx.ActionOutcome, error) {
	scope := "the selected rooms"
	if ms, ok := slots.(classifyx.MultiRoomSlots); ok {
		if ms.AllRooms {
			scope = "every room"
		} else if len(ms.Locations) > 0 {
			scope = strings.Join(ms.Locations, ", ")
		}
	}
	return &contractx.ActionOutcome{
		Action:      classifyx.ActionMultiRoomSetup,
		Description: fmt.Sprintf("grouped %d device(s) for playback across %s", len(customer.Devices), scope),
	}, nil
}

func (e *Executor) describeRoutine(slots contractx.Slots) (*contractx.ActionOutcome, error) {
	rs, ok := slots.(classifyx.RoutineSlots)
	if !ok {
		return nil, fmt.Errorf("%w: routine slots are required", contractx.ErrExecution)
	}
	name := rs.Name
	if name == "" {
		name = "unnamed routine"
	}
	desc := fmt.Sprintf("routine %q saved", name)
	if rs.Trigger != "" {
		desc += fmt.Sprintf(", triggered %s", rs.Trigger)
	}
	return &contractx.ActionOutcome{
		Action:      classifyx.ActionCustomRoutine,
		Description: desc,
	}, nil
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
