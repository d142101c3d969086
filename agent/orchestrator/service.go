// Package orchestrator composes classification, permission gating, action
// execution, context building, and generation into one handle-turn pipeline.
// Each call is stateless and independent; all mutable state lives behind the
// injected collaborators.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	contractx "github.com/nimbushome/support-agent/agent/contract"
	promptctx "github.com/nimbushome/support-agent/agent/promptctx"
)

const defaultGeneratorTimeout = 30 * time.Second

type Config struct {
	// GeneratorTimeout bounds the only call that may suspend for
	// non-trivial time.
	GeneratorTimeout time.Duration
}

type Orchestrator struct {
	customers contractx.CustomerRepository
	tiers     contractx.TierRepository
	turns     contractx.ConversationStore
	generator contractx.Generator
	executor  contractx.ActionExecutor
	builder   *promptctx.Builder
	logger    zerolog.Logger

	graphRunner compose.Runnable[graphInput, graphOutput]

	generatorTimeout time.Duration
	now              func() time.Time
}

func New(
	customers contractx.CustomerRepository,
	tiers contractx.TierRepository,
	turns contractx.ConversationStore,
	generator contractx.Generator,
	executor contractx.ActionExecutor,
	builder *promptctx.Builder,
	logger zerolog.Logger,
	cfg Config,
) (*Orchestrator, error) {
	if customers == nil {
		return nil, errors.New("customer repository is required")
	}
	if tiers == nil {
		return nil, errors.New("tier repository is required")
	}
	if turns == nil {
		return nil, errors.New("conversation store is required")
	}
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if builder == nil {
		return nil, errors.New("context builder is required")
	}

	timeout := cfg.GeneratorTimeout
	if timeout <= 0 {
		timeout = defaultGeneratorTimeout
	}

	o := &Orchestrator{
		customers:        customers,
		tiers:            tiers,
		turns:            turns,
		generator:        generator,
		executor:         executor,
		builder:          builder,
		logger:           logger,
		generatorTimeout: timeout,
		now:              time.Now,
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn processes one utterance end to end. conversationID may be empty;
// a fresh id then covers both persisted turns of the exchange.
func (o *Orchestrator) HandleTurn(
	ctx context.Context,
	customerID string,
	text string,
	conversationID string,
) (contractx.TurnResult, error) {
	out, err := o.graphRunner.Invoke(ctx, graphInput{
		CustomerID:     customerID,
		Text:           text,
		ConversationID: conversationID,
	})
	if err != nil {
		return contractx.TurnResult{}, err
	}
	return out.Result, nil
}
