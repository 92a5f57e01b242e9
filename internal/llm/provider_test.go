package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/abhisek/cifra/internal/store"
)

func TestMockProvider(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Err: &ErrRateLimit{}},
	)

	resp, err := mock.Generate(context.Background(), Request{System: "sys"})
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Content) != `{"a":1}` || resp.Usage.TotalTokens != 15 || resp.StopReason != StopEnd {
		t.Fatalf("resp = %+v", resp)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &rl) {
		t.Fatalf("second call err = %v", err)
	}
	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &unavail) {
		t.Fatalf("empty queue err = %v", err)
	}
	if mock.CallCount() != 3 || mock.Calls[0].System != "sys" {
		t.Fatalf("calls = %+v", mock.Calls)
	}
}

func TestResponseDecode(t *testing.T) {
	r := &Response{Content: json.RawMessage(`{"explanation":"Нажмите"}`)}
	var out struct{ Explanation string }
	if err := r.Decode(&out); err != nil || out.Explanation != "Нажмите" {
		t.Fatalf("decode = %+v, %v", out, err)
	}
	r = &Response{Content: json.RawMessage(`nope`)}
	var inv *ErrInvalidResponse
	if err := r.Decode(&out); !errors.As(err, &inv) {
		t.Fatalf("err = %v", err)
	}
}

func TestFinishTruncatedStructuredOutput(t *testing.T) {
	_, err := finish(Request{Schema: hintSchema()}, json.RawMessage(`{"explan`), Usage{}, "m", StopMaxTokens)
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("err = %v", err)
	}
	if _, err := finish(Request{}, json.RawMessage(`Нажмите`), Usage{}, "m", StopMaxTokens); err != nil {
		t.Fatalf("plain text may be cut short: %v", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("got %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, PurposeStepHint)); p != PurposeStepHint {
		t.Fatalf("got %q", p)
	}
}

func TestClassify(t *testing.T) {
	base := errors.New("boom")
	var (
		rl    *ErrRateLimit
		auth  *ErrAuth
		unav  *ErrProviderUnavailable
		wrapC = errors.Join(base, context.Canceled)
	)
	if !errors.As(classify(429, base), &rl) {
		t.Error("429 should be a rate limit")
	}
	if !errors.As(classify(401, base), &auth) || !errors.As(classify(403, base), &auth) {
		t.Error("401/403 should be auth errors")
	}
	if !errors.As(classify(502, base), &unav) || !errors.As(classify(0, base), &unav) {
		t.Error("5xx and transport errors should be unavailability")
	}
	if got := classify(0, wrapC); got != wrapC {
		t.Errorf("context errors pass through, got %v", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{}, true},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown", Config{Provider: "openrouter"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	env := func(kv map[string]string) func(string) string {
		return func(k string) string { return kv[k] }
	}

	cfg := configFrom(env(nil))
	if cfg.Enabled() {
		t.Fatalf("no keys should disable LLM features, got %q", cfg.Provider)
	}

	cfg = configFrom(env(map[string]string{"OPENAI_API_KEY": "o", "ANTHROPIC_API_KEY": "a"}))
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "o" {
		t.Fatalf("discovery picked %q", cfg.Provider)
	}

	cfg = configFrom(env(map[string]string{"GEMINI_API_KEY": "g", "CIFRA_ANTHROPIC_API_KEY": "a"}))
	if cfg.Provider != ProviderAnthropic {
		t.Fatalf("a CIFRA_ key wins over discovery, got %q", cfg.Provider)
	}

	cfg = configFrom(env(map[string]string{
		"CIFRA_LLM_PROVIDER":    "openai",
		"CIFRA_OPENAI_API_KEY":  "o",
		"CIFRA_OPENAI_BASE_URL": "http://localhost:8080/v1",
		"CIFRA_LLM_TIMEOUT":     "5s",
	}))
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.BaseURL == "" || cfg.Timeout.Seconds() != 5 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

type memRecorder struct {
	events []store.LLMRequestEventData
	err    error
}

func (m *memRecorder) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	m.events = append(m.events, d)
	return m.err
}

func TestRecording(t *testing.T) {
	rec := &memRecorder{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Usage: Usage{InputTokens: 3, OutputTokens: 4}},
		MockResponse{Err: &ErrAuth{Err: errors.New("bad key")}},
	)
	p := WithRecording(mock, ProviderMock, rec, nil)
	ctx := WithPurpose(context.Background(), PurposeStepHint)

	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	if len(rec.events) != 2 {
		t.Fatalf("events = %d", len(rec.events))
	}
	ok, failed := rec.events[0], rec.events[1]
	if !ok.Success || ok.Purpose != PurposeStepHint || ok.InputTokens != 3 || ok.Provider != ProviderMock {
		t.Errorf("ok event = %+v", ok)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("failed event = %+v", failed)
	}
}

func TestRecordingFailureDoesNotFailCall(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	p := WithRecording(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), ProviderMock, rec, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("err = %v", err)
	}
}

func TestNewProviderMock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock, Retry: RetryConfig{MaxAttempts: 1}}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("model = %q", p.ModelID())
	}
	if _, err := NewProvider(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("disabled config should not build a provider")
	}
}
