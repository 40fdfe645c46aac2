// Package model provides the estimator state management shared by the
// library's fitted structures.
//
// Every estimator composes a StateManager and uses it to gate methods that
// require a completed Fit. The manager is safe for concurrent readers, which
// matters because fitted models are routinely scored from many goroutines at
// once.
package model

import (
	"sync"
)

// EstimatorState represents the learning state of a model.
type EstimatorState int

const (
	// NotFitted indicates the model is not yet trained.
	NotFitted EstimatorState = iota
	// Fitted indicates the model has been trained.
	Fitted
)

// StateManager tracks whether an estimator has been fitted.
//
// Zero value is ready to use and reports NotFitted.
type StateManager struct {
	mu    sync.RWMutex
	state EstimatorState
}

// NewStateManager creates a state manager in the NotFitted state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether the estimator has been fitted with training data.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == Fitted
}

// SetFitted marks the estimator as fitted. Called by model implementations
// at the end of a successful Fit, never by end users.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Fitted
}

// Reset returns the estimator to its initial untrained state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = NotFitted
}

// State returns the current estimator state.
func (s *StateManager) State() EstimatorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
