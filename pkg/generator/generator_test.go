package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

type fakeChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func TestGenerateFormatsPrompt(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{reply: "  The volume is now 60.  "}
	gen, err := NewWithModel(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewWithModel() error = %v", err)
	}

	payload, _ := json.Marshal(map[string]string{"utterance": "turn it up"})
	reply, err := gen.Generate(context.Background(), contractx.GenerationRequest{
		Instructions: "Answer as a support agent.",
		Payload:      payload,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply != "The volume is now 60." {
		t.Errorf("reply = %q, want trimmed model output", reply)
	}

	if len(fake.seen) != 2 {
		t.Fatalf("model saw %d messages, want system + user", len(fake.seen))
	}
	if fake.seen[0].Role != schema.System || !strings.Contains(fake.seen[0].Content, "support agent") {
		t.Errorf("system message = %+v", fake.seen[0])
	}
	if fake.seen[1].Role != schema.User || !strings.Contains(fake.seen[1].Content, "turn it up") {
		t.Errorf("user message = %+v", fake.seen[1])
	}
}

func TestGenerateModelFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{err: errors.New("upstream 503")}
	gen, err := NewWithModel(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewWithModel() error = %v", err)
	}

	_, err = gen.Generate(context.Background(), contractx.GenerationRequest{
		Instructions: "Answer.",
		Payload:      json.RawMessage(`{}`),
	})
	if !errors.Is(err, contractx.ErrGeneration) {
		t.Fatalf("error = %v, want ErrGeneration", err)
	}
}

func TestGenerateRejectsEmptyInstructions(t *testing.T) {
	t.Parallel()

	gen, err := NewWithModel(context.Background(), &fakeChatModel{reply: "x"})
	if err != nil {
		t.Fatalf("NewWithModel() error = %v", err)
	}
	if _, err := gen.Generate(context.Background(), contractx.GenerationRequest{}); !errors.Is(err, contractx.ErrGeneration) {
		t.Fatalf("error = %v, want ErrGeneration", err)
	}
}

func TestNewWithModelRequiresModel(t *testing.T) {
	t.Parallel()

	if _, err := NewWithModel(context.Background(), nil); err == nil {
		t.Fatal("NewWithModel(nil) should fail")
	}
}
