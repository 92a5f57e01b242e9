// Package assist explains lesson steps in simpler words with a language
// model.
package assist

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/cifra/internal/llm"
)

// Service generates step hints. Hints are cached per lesson step since the
// step text does not change during a run.
type Service struct {
	provider llm.Provider
	cfg      Config

	mu    sync.Mutex
	cache map[string]*Hint
}

func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg, cache: make(map[string]*Hint)}
}

type hintOutput struct {
	Explanation string   `json:"explanation"`
	Tips        []string `json:"tips"`
}

// Explain returns the hint for in.Step. It is safe to call from a
// goroutine.
func (s *Service) Explain(ctx context.Context, in Input) (*Hint, error) {
	if in.Lesson == nil || in.Step < 0 || in.Step >= len(in.Lesson.Steps) {
		return nil, fmt.Errorf("no such step")
	}
	key := fmt.Sprintf("%s/%d", in.Lesson.ID, in.Step)
	s.mu.Lock()
	if h, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return h, nil
	}
	s.mu.Unlock()

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeStepHint), llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in)}},
		Schema:      HintSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("step hint: %w", err)
	}
	var out hintOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse step hint: %w", err)
	}

	h := &Hint{
		LessonID:    in.Lesson.ID,
		Step:        in.Step,
		Explanation: strings.TrimSpace(out.Explanation),
	}
	for _, tip := range out.Tips {
		if tip = strings.TrimSpace(tip); tip != "" {
			h.Tips = append(h.Tips, tip)
		}
	}

	s.mu.Lock()
	s.cache[key] = h
	s.mu.Unlock()
	return h, nil
}
