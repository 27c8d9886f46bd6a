package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Save writes the full state in one store operation. If another save is
// already in progress the call is dropped and returns nil; the next mutation
// schedules a fresh save.
func (s *State) Save() error {
	if !s.saveMu.TryLock() {
		s.logger.Debug("save already in progress, dropping request")
		return nil
	}
	defer s.saveMu.Unlock()

	return s.write()
}

// SaveBatched schedules a save after the configured quiet period. Repeated
// calls restart the wait.
func (s *State) SaveBatched() {
	s.saver.Call()
}

// Flush cancels any pending batched save and writes the state, waiting for
// an in-progress save to finish first.
func (s *State) Flush() error {
	s.saver.Cancel()

	return s.saveBlocking()
}

func (s *State) saveBlocking() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	return s.write()
}

func (s *State) write() error {
	values, err := s.encode()
	if err != nil {
		s.opts.Metrics.Saved(err)
		return errSaveFailed.Wrap(err)
	}

	err = s.local.Set(values)
	s.opts.Metrics.Saved(err)

	if err != nil {
		return errSaveFailed.Wrap(err)
	}

	s.logger.Debug("state saved", slog.Int("keys", len(values)))

	return nil
}

func (s *State) encode() (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string][]byte)

	for key, ptr := range fields(&s.data) {
		b, err := json.Marshal(ptr)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}

		values[key] = b
	}

	if s.timeFmt != "" {
		b, err := json.Marshal(s.timeFmt)
		if err != nil {
			return nil, err
		}

		values[keyTimeFormat] = b
	}

	if s.pomodoro != nil {
		b, err := json.Marshal(s.pomodoro)
		if err != nil {
			return nil, err
		}

		values[keyPomodoroState] = b
	}

	return values, nil
}
