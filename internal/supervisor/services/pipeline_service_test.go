// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/segmatch/internal/pipeline"
)

type mockRunner struct {
	mu    sync.Mutex
	calls int
	err   error
	ran   chan struct{}
}

func newMockRunner() *mockRunner {
	return &mockRunner{ran: make(chan struct{}, 16)}
}

func (m *mockRunner) Run(context.Context) (*pipeline.Summary, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()

	select {
	case m.ran <- struct{}{}:
	default:
	}

	sum := &pipeline.Summary{RunID: "run-1", Status: pipeline.StatusSuccess}
	if err != nil {
		sum.Status = pipeline.StatusFailed
		return sum, err
	}
	return sum, nil
}

func (m *mockRunner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ suture.Service = (*PipelineService)(nil)

func TestPipelineService_RunOnStartup(t *testing.T) {
	runner := newMockRunner()
	svc := NewPipelineService(runner, PipelineServiceConfig{RunOnStartup: true, Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-runner.ran:
	case <-time.After(time.Second):
		t.Fatal("startup run did not happen")
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if got := runner.Calls(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestPipelineService_ScheduledRuns(t *testing.T) {
	runner := newMockRunner()
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-runner.ran:
		case <-time.After(time.Second):
			t.Fatalf("scheduled run %d did not happen", i+1)
		}
	}
	cancel()
	<-done
}

func TestPipelineService_FailedRunKeepsServing(t *testing.T) {
	runner := newMockRunner()
	runner.err = errors.New("stage customers: boom")
	svc := NewPipelineService(runner, PipelineServiceConfig{RunOnStartup: true, Interval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-runner.ran:
		case <-time.After(time.Second):
			t.Fatalf("run %d did not happen", i+1)
		}
	}

	select {
	case err := <-done:
		t.Fatalf("Serve() returned early: %v", err)
	default:
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

func TestNewPipelineService_DefaultInterval(t *testing.T) {
	svc := NewPipelineService(newMockRunner(), PipelineServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != DefaultInterval {
		t.Errorf("Interval = %v, want %v", svc.config.Interval, DefaultInterval)
	}
	if svc.String() != "pipeline-service" {
		t.Errorf("String() = %q, want pipeline-service", svc.String())
	}
}
