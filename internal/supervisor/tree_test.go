// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNewTree_AppliesDefaults verifies zero-valued config fields are filled
// with the documented defaults.
func TestNewTree_AppliesDefaults(t *testing.T) {
	tree, err := NewTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewTree() failed: %v", err)
	}

	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", tree.config.ShutdownTimeout)
	}
	if tree.Root() == nil {
		t.Error("Root() = nil")
	}
}

// TestTree_RunsServicesInAllLayers verifies services added to each layer
// start under the root supervisor and stop on cancellation.
func TestTree_RunsServicesInAllLayers(t *testing.T) {
	tree, err := NewTree(quietLogger(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewTree() failed: %v", err)
	}

	var started int32
	mkService := func(name string) *RunnerService {
		return NewRunnerService(name, runnerFunc(func(ctx context.Context) error {
			atomic.AddInt32(&started, 1)
			<-ctx.Done()
			return ctx.Err()
		}))
	}
	tree.AddPollingService(mkService("poller"))
	tree.AddMessagingService(mkService("hub"))
	tree.AddAPIService(mkService("http"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&started) != 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of 3 services started", atomic.LoadInt32(&started))
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree stopped with %v, want nil or context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor tree did not stop after cancellation")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() failed: %v", err)
	}
	if len(report) != 0 {
		t.Errorf("%d services failed to stop: %v", len(report), report)
	}
}

// TestTree_RestartsCrashedService verifies the supervisor restarts a
// service that returns an unexpected error.
func TestTree_RestartsCrashedService(t *testing.T) {
	tree, err := NewTree(quietLogger(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewTree() failed: %v", err)
	}

	var runs int32
	tree.AddPollingService(NewRunnerService("crasher", runnerFunc(func(ctx context.Context) error {
		if atomic.AddInt32(&runs, 1) == 1 {
			return errors.New("transient crash")
		}
		<-ctx.Done()
		return ctx.Err()
	})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for atomic.LoadInt32(&runs) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("crashed service was not restarted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor tree did not stop after cancellation")
	}
}
