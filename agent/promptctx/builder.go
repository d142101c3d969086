// Package promptctx assembles the structured context payload and the
// natural-language instruction block handed to the response generator. The
// four-part denied narrative produced here is a contract on the instructions,
// not on the generator's literal output.
package promptctx

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	classifyx "github.com/nimbushome/support-agent/agent/classify"
	contractx "github.com/nimbushome/support-agent/agent/contract"
	permissionx "github.com/nimbushome/support-agent/agent/permission"
)

//go:embed template/system.txt
var systemPromptRaw string

// SystemPrompt returns the trimmed base instruction block.
func SystemPrompt() string {
	return strings.TrimSpace(systemPromptRaw)
}

type DeviceContext struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Location    string `json:"location"`
	Power       string `json:"power"`
	Volume      *int   `json:"volume,omitempty"`
	CurrentSong string `json:"current_song,omitempty"`
}

type CustomerContext struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Tier    string          `json:"tier"`
	Devices []DeviceContext `json:"devices,omitempty"`
}

type RequestContext struct {
	Type            string          `json:"type"`
	Slots           contractx.Slots `json:"slots,omitempty"`
	Allowed         bool            `json:"allowed"`
	RequiredActions []string        `json:"required_actions,omitempty"`
}

// PromptContext is the typed payload serialized for the generator. One
// variant per branch: Request is nil for unclassifiable utterances, Outcome
// is set only after an execution attempt.
type PromptContext struct {
	Utterance      string                   `json:"utterance"`
	Customer       CustomerContext          `json:"customer"`
	Request        *RequestContext          `json:"request,omitempty"`
	Outcome        *contractx.ActionOutcome `json:"outcome,omitempty"`
	ExecutionError string                   `json:"execution_error,omitempty"`
	Examples       []Example                `json:"examples,omitempty"`
}

type Builder struct {
	// Registered tiers, used to name the minimal unlocking tier in denied
	// narratives.
	tiers []contractx.Tier
}

func NewBuilder(tiers []contractx.Tier) *Builder {
	return &Builder{tiers: append([]contractx.Tier(nil), tiers...)}
}

type Input struct {
	Utterance string
	Customer  *contractx.Customer
	Tier      contractx.Tier

	// Result is nil for the unclassifiable branch.
	Result          *classifyx.Result
	RequiredActions []string
	Allowed         bool

	Outcome *contractx.ActionOutcome
	ExecErr error
}

// Build produces the generation request for one turn.
func (b *Builder) Build(in Input) (contractx.GenerationRequest, error) {
	if in.Customer == nil {
		return contractx.GenerationRequest{}, fmt.Errorf("%w: customer is required", contractx.ErrValidation)
	}

	pc := PromptContext{
		Utterance: in.Utterance,
		Customer:  customerContext(in.Customer),
	}

	var instructions string
	switch {
	case in.Result == nil:
		instructions = b.unclassifiableInstructions(in)
	case in.ExecErr != nil:
		pc.Request = requestContext(in)
		pc.ExecutionError = in.ExecErr.Error()
		instructions = b.executionErrorInstructions(in)
	case !in.Allowed:
		pc.Request = requestContext(in)
		pc.Examples = ExamplesFor(in.Result.Type, false)
		instructions = b.deniedInstructions(in)
	default:
		pc.Request = requestContext(in)
		pc.Outcome = in.Outcome
		pc.Examples = ExamplesFor(in.Result.Type, true)
		instructions = b.allowedInstructions(in)
	}

	payload, err := json.Marshal(pc)
	if err != nil {
		return contractx.GenerationRequest{}, fmt.Errorf("%w: marshal prompt context: %v", contractx.ErrValidation, err)
	}

	return contractx.GenerationRequest{
		Instructions: SystemPrompt() + "\n\n" + instructions,
		Payload:      payload,
	}, nil
}

func (b *Builder) unclassifiableInstructions(in Input) string {
	var sb strings.Builder
	sb.WriteString("The customer's message did not match any supported request. ")
	sb.WriteString("Respond helpfully to the message as written, using only the customer context provided. ")
	sb.WriteString("Do not frame anything in terms of permissions or plans.")
	return sb.String()
}

func (b *Builder) allowedInstructions(in Input) string {
	var sb strings.Builder
	sb.WriteString("The request is permitted on the customer's plan. ")
	sb.WriteString("Answer with confidence and be direct. ")
	switch {
	case in.Outcome != nil && in.Outcome.NewVolume != nil:
		fmt.Fprintf(&sb, "State that the volume is now %d. ", *in.Outcome.NewVolume)
	case in.Outcome != nil && in.Outcome.NewSong != "":
		fmt.Fprintf(&sb, "State that %q is now playing. ", in.Outcome.NewSong)
	case in.Outcome != nil && in.Outcome.NewLocation != "":
		fmt.Fprintf(&sb, "State that the device is now set up in the %s. ", in.Outcome.NewLocation)
	case in.Outcome != nil:
		fmt.Fprintf(&sb, "State plainly that this was done: %s. ", in.Outcome.Description)
	}
	sb.WriteString("Name the specific action taken, including the concrete new value.")
	return sb.String()
}

// deniedInstructions assembles the four-part denial narrative:
// acknowledge, unavailable-at-tier, minimal unlocking tier, one permitted
// alternative.
func (b *Builder) deniedInstructions(in Input) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write the reply in four parts, in order. ")
	fmt.Fprintf(&sb, "1) Acknowledge the specific request (%s). ",
		humanRequestName(in.Result.Type))
	fmt.Fprintf(&sb, "2) State plainly that this action is not available on the %q plan. ",
		in.Tier.Name)

	if upgrade, ok := permissionx.MinimalTierFor(in.RequiredActions, b.tiers); ok {
		fmt.Fprintf(&sb, "3) Mention that the %q plan is the one that unlocks it. ", upgrade.Name)
	} else {
		sb.WriteString("3) No current plan offers this action; say so without inventing one. ")
	}

	if alt, ok := permissionx.AlternativeAction(in.Tier, in.RequiredActions); ok {
		fmt.Fprintf(&sb, "4) Offer one concrete thing you can do instead: %s.",
			humanActionName(alt))
	} else {
		sb.WriteString("4) Offer to answer general questions about their devices instead.")
	}
	return sb.String()
}

func (b *Builder) executionErrorInstructions(in Input) string {
	var sb strings.Builder
	sb.WriteString("The request was permitted but the action failed while executing. ")
	sb.WriteString("Acknowledge the problem without blaming the customer, and do not mention plans or permissions. ")
	sb.WriteString("Suggest one troubleshooting step, such as checking that the device is powered and connected.")
	return sb.String()
}

func customerContext(c *contractx.Customer) CustomerContext {
	out := CustomerContext{
		ID:   c.ID,
		Name: c.Name,
		Tier: c.Tier,
	}
	for i := range c.Devices {
		d := &c.Devices[i]
		dc := DeviceContext{
			ID:       d.ID,
			Type:     d.Type,
			Location: d.Location,
			Power:    string(d.Power),
			Volume:   d.Volume,
		}
		if song, ok := d.CurrentSong(); ok {
			dc.CurrentSong = song
		}
		out.Devices = append(out.Devices, dc)
	}
	return out
}

func requestContext(in Input) *RequestContext {
	return &RequestContext{
		Type:            string(in.Result.Type),
		Slots:           in.Result.Slots,
		Allowed:         in.Allowed,
		RequiredActions: in.RequiredActions,
	}
}

var humanRequestNames = map[classifyx.RequestType]string{
	classifyx.TypeDeviceStatus:     "checking a device's status",
	classifyx.TypeDevicePower:      "turning a device on or off",
	classifyx.TypeVolumeControl:    "changing the volume",
	classifyx.TypeSongChanges:      "changing the song",
	classifyx.TypeDeviceRelocation: "moving a device to another room",
	classifyx.TypeMultiRoomSetup:   "setting up multi-room playback",
	classifyx.TypeCustomRoutine:    "creating a custom routine",
}

func humanRequestName(t classifyx.RequestType) string {
	if name, ok := humanRequestNames[t]; ok {
		return name
	}
	return string(t)
}

var humanActionNames = map[string]string{
	classifyx.ActionDeviceStatus:     "check a device's status",
	classifyx.ActionDevicePower:      "turn a device on or off",
	classifyx.ActionVolumeControl:    "adjust the volume",
	classifyx.ActionSongChanges:      "change the song",
	classifyx.ActionDeviceRelocation: "move a device to another room",
	classifyx.ActionMultiRoomSetup:   "group devices across rooms",
	classifyx.ActionCustomRoutine:    "set up a routine",
}

func humanActionName(action string) string {
	if name, ok := humanActionNames[action]; ok {
		return name
	}
	return action
}
