package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[graphInput, graphOutput], error) {
	graph := compose.NewGraph[graphInput, graphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in graphInput) (*graphState, error) {
			return validateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_customer",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return resolveCustomer(ctx, in, o.customers)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_customer: %w", err)
	}

	if err := graph.AddLambdaNode("classify",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return classifyUtterance(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify: %w", err)
	}

	if err := graph.AddLambdaNode("check_permission",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return checkPermission(ctx, in, o.tiers)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node check_permission: %w", err)
	}

	if err := graph.AddLambdaNode("execute_action",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return executeAction(ctx, in, o.executor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_action: %w", err)
	}

	if err := graph.AddLambdaNode("build_context",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return buildContext(in, o.builder)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_context: %w", err)
	}

	if err := graph.AddLambdaNode("generate_reply",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return generateReply(ctx, in, o.generator, o.generatorTimeout, func(err error) {
				o.logger.Warn().Err(err).Msg("generator fallback engaged")
			})
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_reply: %w", err)
	}

	if err := graph.AddLambdaNode("persist_turns",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return persistTurns(ctx, in, o.turns, func(err error, turn *contractx.ConversationTurn) {
				o.logger.Error().Err(err).
					Str("conversation_id", turn.ConversationID).
					Str("sender", string(turn.Sender)).
					Msg("turn persistence failed, continuing")
			})
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_turns: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_turn",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (graphOutput, error) {
			return finalizeTurn(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_turn: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "resolve_customer"},
		{"resolve_customer", "classify"},
		{"classify", "check_permission"},
		{"check_permission", "execute_action"},
		{"execute_action", "build_context"},
		{"build_context", "generate_reply"},
		{"generate_reply", "persist_turns"},
		{"persist_turns", "finalize_turn"},
		{"finalize_turn", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile handle_turn graph: %w", err)
	}
	return runner, nil
}
