// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingService struct {
	serves atomic.Int32
}

func (c *countingService) Serve(ctx context.Context) error {
	c.serves.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (c *countingService) String() string { return "counting" }

func TestTreeRunsServices(t *testing.T) {
	tree := NewTree(testLogger(), DefaultTreeConfig())

	bg := &countingService{}
	api := &countingService{}
	tree.AddBackgroundService(bg)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for bg.serves.Load() == 0 || api.serves.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("services never started")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected terminal error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}
}

func TestTreeRestartsCrashedService(t *testing.T) {
	cfg := DefaultTreeConfig()
	cfg.FailureBackoff = 10 * time.Millisecond
	tree := NewTree(testLogger(), cfg)

	crasher := &crashingService{}
	tree.AddBackgroundService(crasher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for crasher.serves.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("service not restarted after crash: %d runs", crasher.serves.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-errCh
}

type crashingService struct {
	serves atomic.Int32
}

func (c *crashingService) Serve(ctx context.Context) error {
	if c.serves.Add(1) == 1 {
		return errors.New("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *crashingService) String() string { return "crasher" }

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 || cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
