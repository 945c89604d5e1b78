// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// mockHTTPServer implements HTTPServer without binding a port.
type mockHTTPServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns int32
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{stop: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stop
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(ctx context.Context) error {
	atomic.AddInt32(&m.shutdowns, 1)
	close(m.stop)
	return nil
}

// TestHTTPService_GracefulShutdown verifies cancellation drains the server
// through Shutdown and Serve returns cleanly.
func TestHTTPService_GracefulShutdown(t *testing.T) {
	srv := newMockHTTPServer()
	svc := NewHTTPService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want nil or context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
	if n := atomic.LoadInt32(&srv.shutdowns); n != 1 {
		t.Errorf("Shutdown called %d times, want 1", n)
	}
}

// TestHTTPService_ListenErrorPropagates verifies a bind failure is reported
// to the supervisor instead of being swallowed.
func TestHTTPService_ListenErrorPropagates(t *testing.T) {
	srv := newMockHTTPServer()
	srv.listenErr = errors.New("listen tcp: address already in use")
	svc := NewHTTPService(srv, time.Second)

	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(context.Background())
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Serve() = nil, want the listen error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return the listen error")
	}
}

// TestRunnerService_DelegatesAndNames verifies the wrapper forwards Serve
// to the runner and exposes its configured name.
func TestRunnerService_DelegatesAndNames(t *testing.T) {
	ran := make(chan struct{})
	svc := NewRunnerService("orchestrator", runnerFunc(func(ctx context.Context) error {
		close(ran)
		<-ctx.Done()
		return ctx.Err()
	}))

	if got := svc.String(); got != "orchestrator" {
		t.Errorf("String() = %q, want orchestrator", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("runner never invoked")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
}

// TestHubService_Name verifies the hub wrapper's fixed service name.
func TestHubService_Name(t *testing.T) {
	svc := NewHubService(contextHubFunc(func(ctx context.Context) error { return nil }))
	if got := svc.String(); got != "websocket-hub" {
		t.Errorf("String() = %q, want websocket-hub", got)
	}
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

type contextHubFunc func(ctx context.Context) error

func (f contextHubFunc) RunWithContext(ctx context.Context) error { return f(ctx) }
