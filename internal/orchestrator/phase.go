package orchestrator

import (
	"sync"
	"time"
)

// Phase is the lifecycle stage of one analysis run.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseSchemaDetecting Phase = "schema_detecting"
	PhaseValidating      Phase = "validating"
	PhaseAnalyzing       Phase = "analyzing"
	PhaseSynthesizing    Phase = "synthesizing"
	PhaseComplete        Phase = "complete"
	PhaseFailed          Phase = "failed"
)

// validTransitions encodes the forward-only lifecycle. Any phase may
// jump to failed.
var validTransitions = map[Phase][]Phase{
	PhaseIdle:            {PhaseSchemaDetecting},
	PhaseSchemaDetecting: {PhaseValidating},
	PhaseValidating:      {PhaseAnalyzing},
	PhaseAnalyzing:       {PhaseSynthesizing},
	PhaseSynthesizing:    {PhaseComplete},
}

// RunState tracks the phase of a single run. Safe for concurrent use;
// the orchestrator advances it while transport handlers read it.
type RunState struct {
	mu         sync.RWMutex
	id         string
	phase      Phase
	startedAt  time.Time
	phaseStart time.Time
	endedAt    *time.Time
	err        error
}

func NewRunState(id string) *RunState {
	now := time.Now()
	return &RunState{id: id, phase: PhaseIdle, startedAt: now, phaseStart: now}
}

func (s *RunState) ID() string { return s.id }

func (s *RunState) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *RunState) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Advance moves to the next phase. Returns false and leaves the state
// untouched when the transition is not part of the lifecycle.
func (s *RunState) Advance(next Phase) bool {
	_, _, ok := s.advance(next)
	return ok
}

// advance additionally reports the phase being left and the time spent
// in it, for the per-stage metrics.
func (s *RunState) advance(next Phase) (Phase, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, allowed := range validTransitions[s.phase] {
		if allowed == next {
			prev := s.phase
			now := time.Now()
			elapsed := now.Sub(s.phaseStart)
			s.phase = next
			s.phaseStart = now
			if next == PhaseComplete {
				s.endedAt = &now
			}
			return prev, elapsed, true
		}
	}
	return s.phase, 0, false
}

// Fail moves to failed from any non-terminal phase.
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseComplete || s.phase == PhaseFailed {
		return
	}
	now := time.Now()
	s.endedAt = &now
	s.phase = PhaseFailed
	s.err = err
}

// Duration reports elapsed run time, live until the run ends.
func (s *RunState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.endedAt != nil {
		return s.endedAt.Sub(s.startedAt)
	}
	return time.Since(s.startedAt)
}
