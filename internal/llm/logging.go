package llm

import (
	"context"
	"time"

	"github.com/abhisek/cifra/internal/logger"
	"github.com/abhisek/cifra/internal/store"
)

// Recorder persists one row per provider call.
type Recorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

type recordingProvider struct {
	inner    Provider
	provider string
	rec      Recorder
	log      *logger.Logger
	now      func() time.Time
}

// WithRecording wraps p so that every call, failed or not, is recorded.
// A nil Recorder only logs.
func WithRecording(p Provider, provider string, rec Recorder, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &recordingProvider{inner: p, provider: provider, rec: rec, log: log, now: time.Now}
}

func (r *recordingProvider) ModelID() string { return r.inner.ModelID() }

func (r *recordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := r.now()
	resp, err := r.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  r.provider,
		Model:     r.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: r.now().Sub(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		r.log.Warn("llm request failed", "purpose", data.Purpose, "model", data.Model, "error", data.ErrorMessage)
	} else {
		r.log.Debug("llm request", "purpose", data.Purpose, "model", data.Model,
			"input_tokens", data.InputTokens, "output_tokens", data.OutputTokens, "latency_ms", data.LatencyMs)
	}

	if r.rec != nil {
		// Cancelled calls are recorded too.
		if recErr := r.rec.AppendLLMRequest(context.WithoutCancel(ctx), data); recErr != nil {
			r.log.Warn("record llm request", "error", recErr.Error())
		}
	}
	return resp, err
}
