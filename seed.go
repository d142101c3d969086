package main

import (
	"context"

	classifyx "github.com/nimbushome/support-agent/agent/classify"
	contractx "github.com/nimbushome/support-agent/agent/contract"
)

type customerUpserter interface {
	Upsert(ctx context.Context, customer *contractx.Customer) error
}

type tierUpserter interface {
	Upsert(ctx context.Context, tier *contractx.Tier) error
}

// seedDemoData loads the demo tier catalog and one customer per tier. Higher
// tiers restate every action they permit; nothing is inherited.
func seedDemoData(ctx context.Context, customers customerUpserter, tiers tierUpserter) error {
	demoTiers := []contractx.Tier{
		{
			Name: "basic",
			AllowedActions: []string{
				classifyx.ActionDeviceStatus,
				classifyx.ActionDevicePower,
			},
		},
		{
			Name: "premium",
			AllowedActions: []string{
				classifyx.ActionDeviceStatus,
				classifyx.ActionDevicePower,
				classifyx.ActionVolumeControl,
				classifyx.ActionSongChanges,
			},
		},
		{
			Name: "elite",
			AllowedActions: []string{
				classifyx.ActionDeviceStatus,
				classifyx.ActionDevicePower,
				classifyx.ActionVolumeControl,
				classifyx.ActionSongChanges,
				classifyx.ActionDeviceRelocation,
				classifyx.ActionMultiRoomSetup,
				classifyx.ActionCustomRoutine,
			},
		},
	}
	for i := range demoTiers {
		if err := tiers.Upsert(ctx, &demoTiers[i]); err != nil {
			return err
		}
	}

	livingRoomVol, kitchenVol := 40, 25
	demoCustomers := []contractx.Customer{
		{
			ID:   "cust-basic-001",
			Name: "Dana Whitfield",
			Tier: "basic",
			Devices: []contractx.Device{
				{
					ID:       "dev-001",
					Type:     "smart speaker",
					Location: "living room",
					Power:    contractx.PowerOn,
					Volume:   &livingRoomVol,
					Playlist: []string{"Golden Hour", "Night Drive", "Morning Light"},
				},
			},
		},
		{
			ID:   "cust-premium-001",
			Name: "Marcus Oyelaran",
			Tier: "premium",
			Devices: []contractx.Device{
				{
					ID:       "dev-002",
					Type:     "smart speaker",
					Location: "kitchen",
					Power:    contractx.PowerOff,
					Volume:   &kitchenVol,
					Playlist: []string{"Slow Burn", "Paper Planes"},
				},
				{
					ID:       "dev-003",
					Type:     "smart display",
					Location: "bedroom",
					Power:    contractx.PowerOn,
				},
			},
		},
		{
			ID:      "cust-elite-001",
			Name:    "Priya Raman",
			Tier:    "elite",
			Devices: nil, // no devices yet, exercises the registration prompt
		},
	}
	for i := range demoCustomers {
		if err := customers.Upsert(ctx, &demoCustomers[i]); err != nil {
			return err
		}
	}
	return nil
}
