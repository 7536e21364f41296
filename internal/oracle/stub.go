package oracle

import (
	"context"
	"sync"
	"time"
)

// Stub is a deterministic Oracle for tests and offline runs. A configurable
// latency mimics real-world calls. Safe for concurrent use.
type Stub struct {
	Latency time.Duration

	Classification Classification
	ClassifyErr    error
	Verdict        Verdict
	JudgeErr       error
	Explanation    string
	ExplainErr     error

	// JudgeFn, when set, overrides Verdict/JudgeErr per call.
	JudgeFn func(ruleText string, documentData map[string]any) (Verdict, error)

	mu            sync.Mutex
	JudgeCalls    int
	ClassifyCalls int
}

func (s *Stub) Classify(_ context.Context, _, _ string) (Classification, error) {
	time.Sleep(s.Latency)
	s.mu.Lock()
	s.ClassifyCalls++
	s.mu.Unlock()
	if s.ClassifyErr != nil {
		return Classification{}, s.ClassifyErr
	}
	return s.Classification, nil
}

func (s *Stub) Judge(_ context.Context, ruleText string, documentData map[string]any) (Verdict, error) {
	time.Sleep(s.Latency)
	s.mu.Lock()
	s.JudgeCalls++
	s.mu.Unlock()
	if s.JudgeFn != nil {
		return s.JudgeFn(ruleText, documentData)
	}
	if s.JudgeErr != nil {
		return Verdict{}, s.JudgeErr
	}
	return s.Verdict, nil
}

func (s *Stub) Explain(_ context.Context, _ string) (string, error) {
	time.Sleep(s.Latency)
	if s.ExplainErr != nil {
		return "", s.ExplainErr
	}
	return s.Explanation, nil
}
