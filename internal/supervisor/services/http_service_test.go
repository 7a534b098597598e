// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type mockServer struct {
	listenErr   error
	shutdownErr error
	shutdowns   chan struct{}
	done        chan struct{}
}

func newMockServer() *mockServer {
	return &mockServer{
		shutdowns: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.done
	return http.ErrServerClosed
}

func (m *mockServer) Shutdown(_ context.Context) error {
	m.shutdowns <- struct{}{}
	close(m.done)
	return m.shutdownErr
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	srv := newMockServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}

	select {
	case <-srv.shutdowns:
	default:
		t.Error("Shutdown was never called")
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	srv := newMockServer()
	srv.listenErr = errors.New("bind: address already in use")
	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, srv.listenErr) {
		t.Errorf("expected the listen error, got %v", err)
	}
}

func TestHTTPServiceString(t *testing.T) {
	if got := NewHTTPServerService(newMockServer(), 0).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}
