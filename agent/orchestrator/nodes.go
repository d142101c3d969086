package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	classifyx "github.com/nimbushome/support-agent/agent/classify"
	contractx "github.com/nimbushome/support-agent/agent/contract"
	permissionx "github.com/nimbushome/support-agent/agent/permission"
	promptctx "github.com/nimbushome/support-agent/agent/promptctx"
)

// Apology is the fixed response substituted when the generator fails.
const Apology = "Sorry — I'm having trouble answering right now. Please try again in a moment."

// RegisterDevicePrompt short-circuits requests that need a device when the
// customer has none registered. The generator is not called for this reply.
const RegisterDevicePrompt = "It looks like you don't have any devices registered yet. Add one in the app and I'll be happy to help with it."

type graphInput struct {
	CustomerID     string
	Text           string
	ConversationID string
}

type graphOutput struct {
	Result contractx.TurnResult
}

type graphState struct {
	CustomerID     string
	Text           string
	ConversationID string
	Now            time.Time

	Customer *contractx.Customer
	Tier     contractx.Tier

	// Result stays nil for unclassifiable utterances.
	Result          *classifyx.Result
	RequiredActions []string
	Allowed         bool
	Device          *contractx.Device

	Outcome *contractx.ActionOutcome
	ExecErr error

	// NoDevice short-circuits the generator with RegisterDevicePrompt.
	NoDevice     bool
	GenReq       contractx.GenerationRequest
	Reply        string
	GenFailed    bool
	BotMessageID string
}

func validateRequest(in graphInput, nowFn func() time.Time) (*graphState, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is empty", contractx.ErrValidation)
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	}

	// One conversation id covers both halves of the exchange.
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	return &graphState{
		CustomerID:     customerID,
		Text:           text,
		ConversationID: conversationID,
		Now:            nowFn().UTC(),
	}, nil
}

func resolveCustomer(ctx context.Context, st *graphState, customers contractx.CustomerRepository) (*graphState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	customer, err := customers.Get(ctx, st.CustomerID)
	if err != nil {
		return nil, err
	}
	st.Customer = customer
	return st, nil
}

func classifyUtterance(st *graphState) (*graphState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	// An unclassifiable utterance is not an error; it degrades to the
	// free-form response path.
	if result, ok := classifyx.Classify(st.Text); ok {
		st.Result = &result
	}
	return st, nil
}

func checkPermission(ctx context.Context, st *graphState, tiers contractx.TierRepository) (*graphState, error) {
	if st == nil || st.Customer == nil {
		return nil, fmt.Errorf("%w: graph customer is nil", contractx.ErrValidation)
	}
	if st.Result == nil {
		return st, nil
	}

	tier, err := tiers.Get(ctx, st.Customer.Tier)
	if err != nil {
		// Unknown tier is a hard error, never silently permissive or
		// silently denying.
		return nil, err
	}
	st.Tier = *tier

	spec, ok := classifyx.SpecFor(st.Result.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unregistered request type %q", contractx.ErrValidation, st.Result.Type)
	}
	st.RequiredActions = spec.RequiredActions
	st.Allowed = permissionx.AllAllowed(*tier, spec.RequiredActions)

	if spec.RequiresDevice {
		if len(st.Customer.Devices) == 0 {
			st.NoDevice = true
			return st, nil
		}
		st.Device = pickDevice(st.Customer, st.Result)
	}
	return st, nil
}

func executeAction(ctx context.Context, st *graphState, executor contractx.ActionExecutor) (*graphState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if executor == nil || st.Result == nil || !st.Allowed || st.NoDevice {
		return st, nil
	}

	primary := st.RequiredActions[0]
	outcome, err := executor.Execute(ctx, st.Customer, st.Device, primary, st.Result.Slots)
	if err != nil {
		// Execution failure turns into the troubleshooting narrative, not a
		// failed response.
		st.ExecErr = err
		return st, nil
	}
	st.Outcome = outcome
	return st, nil
}

// pickDevice matches slot hints (device word, room) against the customer's
// devices; the first device is the fallback.
func pickDevice(customer *contractx.Customer, result *classifyx.Result) *contractx.Device {
	if customer == nil || len(customer.Devices) == 0 {
		return nil
	}

	hint, location := slotHints(result.Slots)
	for i := range customer.Devices {
		d := &customer.Devices[i]
		if location != "" && !strings.EqualFold(d.Location, location) {
			continue
		}
		if hint != "" && !strings.Contains(strings.ToLower(d.Type), hint) {
			continue
		}
		if hint != "" || location != "" {
			return d
		}
	}
	return &customer.Devices[0]
}

func slotHints(slots contractx.Slots) (hint, location string) {
	switch s := slots.(type) {
	case classifyx.StatusSlots:
		return s.DeviceHint, s.Location
	case classifyx.PowerSlots:
		return s.DeviceHint, s.Location
	case classifyx.RelocationSlots:
		return s.DeviceHint, s.Source
	default:
		return "", ""
	}
}

func buildContext(st *graphState, builder *promptctx.Builder) (*graphState, error) {
	if st == nil || st.Customer == nil {
		return nil, fmt.Errorf("%w: graph customer is nil", contractx.ErrValidation)
	}
	if st.NoDevice {
		return st, nil
	}

	req, err := builder.Build(promptctx.Input{
		Utterance:       st.Text,
		Customer:        st.Customer,
		Tier:            st.Tier,
		Result:          st.Result,
		RequiredActions: st.RequiredActions,
		Allowed:         st.Allowed,
		Outcome:         st.Outcome,
		ExecErr:         st.ExecErr,
	})
	if err != nil {
		return nil, err
	}
	st.GenReq = req
	return st, nil
}

func generateReply(
	ctx context.Context,
	st *graphState,
	generator contractx.Generator,
	timeout time.Duration,
	logf func(err error),
) (*graphState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if st.NoDevice {
		st.Reply = RegisterDevicePrompt
		return st, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := generator.Generate(genCtx, st.GenReq)
	if err != nil {
		// The generator is never allowed to fail the turn; the apology is
		// the response and the turn is flagged.
		logf(fmt.Errorf("%w: %v", contractx.ErrGeneration, err))
		st.Reply = Apology
		st.GenFailed = true
		return st, nil
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		logf(fmt.Errorf("%w: generator returned empty text", contractx.ErrGeneration))
		st.Reply = Apology
		st.GenFailed = true
		return st, nil
	}
	st.Reply = reply
	return st, nil
}

func persistTurns(ctx context.Context, st *graphState, turns contractx.ConversationStore, logf func(err error, turn *contractx.ConversationTurn)) (*graphState, error) {
	if st == nil || st.Customer == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	requestType := ""
	var allowed *bool
	if st.Result != nil {
		requestType = string(st.Result.Type)
		v := st.Allowed
		allowed = &v
	}

	userTurn := &contractx.ConversationTurn{
		ID:             uuid.NewString(),
		ConversationID: st.ConversationID,
		CustomerID:     st.Customer.ID,
		Sender:         contractx.SenderUser,
		Text:           st.Text,
		Timestamp:      st.Now,
		RequestType:    requestType,
		ActionsAllowed: allowed,
	}
	botTurn := &contractx.ConversationTurn{
		ID:               uuid.NewString(),
		ConversationID:   st.ConversationID,
		CustomerID:       st.Customer.ID,
		Sender:           contractx.SenderBot,
		Text:             st.Reply,
		Timestamp:        st.Now,
		RequestType:      requestType,
		ActionsAllowed:   allowed,
		GenerationFailed: st.GenFailed,
	}

	// Persistence failures never block the response.
	for _, turn := range []*contractx.ConversationTurn{userTurn, botTurn} {
		if err := turns.Append(ctx, turn); err != nil {
			logf(errors.Join(contractx.ErrPersistence, err), turn)
		}
	}

	st.BotMessageID = botTurn.ID
	return st, nil
}

func finalizeTurn(st *graphState) (graphOutput, error) {
	if st == nil || st.Customer == nil {
		return graphOutput{}, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	messageID := st.BotMessageID
	if messageID == "" {
		messageID = uuid.NewString()
	}
	result := contractx.TurnResult{
		Message:        st.Reply,
		ConversationID: st.ConversationID,
		MessageID:      messageID,
		CustomerID:     st.Customer.ID,
		Timestamp:      st.Now,
	}
	if st.Result != nil {
		result.RequestType = string(st.Result.Type)
		v := st.Allowed
		result.ActionsAllowed = &v
	}
	return graphOutput{Result: result}, nil
}
