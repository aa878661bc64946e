package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"tip":"one"}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"tip":"two"}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: UserMessage("first"), Schema: tipTestSchema()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"tip":"one"}` {
		t.Fatalf("unexpected content %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: UserMessage("second")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"tip":"two"}` {
		t.Fatalf("unexpected content %s", resp2.Content)
	}
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"advice":"wrong"}`)})

	_, err := mock.Generate(context.Background(), Request{Schema: tipTestSchema()})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Content: json.RawMessage(`{}`)})

	_, _ = mock.Generate(context.Background(), Request{System: "sys", Messages: UserMessage("hello")})

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestRequest_MaxTokensDefault(t *testing.T) {
	if got := (Request{}).maxTokens(); got != DefaultMaxTokens {
		t.Fatalf("expected %d, got %d", DefaultMaxTokens, got)
	}
	if got := (Request{MaxTokens: 64}).maxTokens(); got != 64 {
		t.Fatalf("expected 64, got %d", got)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeTip)
	if p := PurposeFrom(ctx); p != "tip" {
		t.Fatalf("expected 'tip', got %q", p)
	}
}

func TestEstimateCost(t *testing.T) {
	cost, known := EstimateCost("gpt-4o-mini", 1_000_000, 1_000_000)
	if !known {
		t.Fatal("expected gpt-4o-mini to be priced")
	}
	if cost < 0.749 || cost > 0.751 {
		t.Fatalf("expected 0.75, got %f", cost)
	}
	if _, known := EstimateCost("mock", 10, 10); known {
		t.Fatal("mock should not be priced")
	}
}
