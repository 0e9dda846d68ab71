package searchconfig

import (
	"math"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

const (
	DefaultProcesses = 2
	DefaultThreads   = 4
)

// Config is a point-in-time copy of the parallel-mode parameters.
type Config struct {
	Processes int `json:"processes"`
	Threads   int `json:"threads"`
}

func (c Config) TotalWorkers() int {
	return c.Processes * c.Threads
}

// State holds the process and thread counts used for parallel searches. Both
// values are always >= 1; invalid input is ignored rather than rejected.
type State struct {
	// notifyMu orders mutations together with their notifications, so the
	// last observer call always carries the current total.
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	processes int
	threads   int
	observers []func(totalWorkers int)
}

// New builds a State, replacing invalid initial values with the defaults.
func New(processes any, threads any) *State {
	state := &State{processes: DefaultProcesses, threads: DefaultThreads}
	if n, ok := coercePositive(processes); ok {
		state.processes = n
	}
	if n, ok := coercePositive(threads); ok {
		state.threads = n
	}

	return state
}

// OnChange registers fn to be called with the fresh total after every
// accepted mutation. Observers run synchronously on the mutating goroutine
// and must not mutate the state themselves.
func (s *State) OnChange(fn func(totalWorkers int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// SetProcessCount reports whether v was accepted. A rejected value leaves the
// previous count in place.
func (s *State) SetProcessCount(v any) bool {
	accepted, _ := s.Update(v, nil)
	return accepted
}

func (s *State) SetThreadCount(v any) bool {
	_, accepted := s.Update(nil, v)
	return accepted
}

// Update applies both values in one step, so readers never see a pair that
// was not set together. Observers fire once per accepted value.
func (s *State) Update(processes any, threads any) (processesAccepted bool, threadsAccepted bool) {
	p, processesAccepted := coercePositive(processes)
	t, threadsAccepted := coercePositive(threads)
	if !processesAccepted && !threadsAccepted {
		return false, false
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if processesAccepted {
		s.processes = p
	}
	if threadsAccepted {
		s.threads = t
	}
	total := s.processes * s.threads
	observers := make([]func(int), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	notifications := 0
	if processesAccepted {
		notifications++
	}
	if threadsAccepted {
		notifications++
	}
	for i := 0; i < notifications; i++ {
		for _, observer := range observers {
			observer(total)
		}
	}

	return processesAccepted, threadsAccepted
}

func (s *State) ProcessCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processes
}

func (s *State) ThreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threads
}

func (s *State) TotalWorkers() int {
	return s.Snapshot().TotalWorkers()
}

func (s *State) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Config{Processes: s.processes, Threads: s.threads}
}

// coercePositive accepts integral numbers >= 1, given as numbers or as
// trimmed numeric strings.
func coercePositive(v any) (int, bool) {
	switch value := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		v = strings.TrimSpace(value)
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}

	return int(f), true
}
