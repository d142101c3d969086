// Package generator turns a built prompt context into customer-facing text
// through a chat model. It is the only component that talks to the LLM.
package generator

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/nimbushome/support-agent/agent/contract"
	"github.com/nimbushome/support-agent/pkg/openrouter"
)

type Generator struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Generator = (*Generator)(nil)

// New builds the chat model through the provided builder and compiles the
// reply graph once; every Generate call reuses the compiled runner.
func New(ctx context.Context, builder openrouter.LLMBuilder) (*Generator, error) {
	if builder == nil {
		return nil, fmt.Errorf("%w: llm builder is required", contractx.ErrGeneration)
	}
	chatModel, err := builder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: build chat model: %v", contractx.ErrGeneration, err)
	}
	return NewWithModel(ctx, chatModel)
}

// NewWithModel compiles the reply graph around an existing chat model. Tests
// inject fake models through this constructor.
func NewWithModel(ctx context.Context, chatModel einomodel.BaseChatModel) (*Generator, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrGeneration)
	}
	runner, err := compileReplyGraph(ctx, chatModel)
	if err != nil {
		return nil, err
	}
	return &Generator{runner: runner}, nil
}

func (g *Generator) Generate(ctx context.Context, req contractx.GenerationRequest) (string, error) {
	if strings.TrimSpace(req.Instructions) == "" {
		return "", fmt.Errorf("%w: instructions are empty", contractx.ErrGeneration)
	}

	msg, err := g.runner.Invoke(ctx, map[string]any{
		"instructions": req.Instructions,
		"input":        string(req.Payload),
	})
	if err != nil {
		return "", fmt.Errorf("%w: invoke reply graph: %v", contractx.ErrGeneration, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: model returned no message", contractx.ErrGeneration)
	}
	return strings.TrimSpace(msg.Content), nil
}

func compileReplyGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{instructions}"),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add reply prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add reply model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add reply edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add reply edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add reply edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("generator.reply_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile reply graph: %w", err)
	}
	return runner, nil
}
