// Package recorder holds the capture state for one voice sample: idle until
// recording starts, recording while the microphone is open, captured once the
// take is finalized, and back to idle on reset.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateRecording
	StateCaptured
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateCaptured:
		return "captured"
	default:
		return "unknown"
	}
}

var (
	// ErrNotRecording is returned by Stop when no capture is in progress.
	ErrNotRecording = errors.New("no recording in progress")
	// ErrCaptured is returned by Start while a finished take is still held;
	// Reset discards it first.
	ErrCaptured = errors.New("a captured take is pending, reset before recording again")
)

// Source abstracts the microphone. Start may fail (permission denied, no
// device); Stop finalizes the take into a playable audio buffer.
type Source interface {
	Start(ctx context.Context) error
	Stop() ([]byte, error)
}

type Recorder struct {
	mu        sync.Mutex
	src       Source
	now       func() time.Time
	state     State
	startedAt time.Time
	audio     []byte
	duration  int
}

type Option func(*Recorder)

// WithClock replaces the wall clock used for duration tracking.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

func New(src Source, opts ...Option) *Recorder {
	r := &Recorder{
		src: src,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins microphone capture. Calling Start while already recording is
// a no-op. A Source failure leaves the recorder idle.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateRecording:
		return nil
	case StateCaptured:
		return ErrCaptured
	}

	if err := r.src.Start(ctx); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}

	r.state = StateRecording
	r.startedAt = r.now()
	r.duration = 0
	return nil
}

// Stop finalizes the in-progress capture into an audio buffer and records the
// total elapsed duration in whole seconds.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return ErrNotRecording
	}

	audio, err := r.src.Stop()
	if err != nil {
		r.state = StateIdle
		return fmt.Errorf("stop capture: %w", err)
	}

	r.audio = audio
	r.duration = int(r.now().Sub(r.startedAt) / time.Second)
	r.state = StateCaptured
	return nil
}

// Reset discards the captured audio and duration and returns to idle.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = StateIdle
	r.audio = nil
	r.duration = 0
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Duration returns the elapsed whole seconds while recording, or the captured
// take's total duration afterwards.
func (r *Recorder) Duration() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRecording {
		return int(r.now().Sub(r.startedAt) / time.Second)
	}
	return r.duration
}

// Audio returns the captured audio buffer, or nil before Stop.
func (r *Recorder) Audio() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.audio
}
