package web

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runConfigServer(t *testing.T, shutdownTimeout time.Duration) *Server {
	t.Helper()
	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = shutdownTimeout
	s, _ := newTestServer(t, cfg)
	return s
}

func TestRun_WaitsForInFlightUploads(t *testing.T) {
	s := runConfigServer(t, 2*time.Second)
	require.NoError(t, s.uploads.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		t.Fatalf("Run returned while an upload was in flight: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	s.uploads.Release()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the upload finished")
	}
}

func TestRun_ShutdownTimeout(t *testing.T) {
	s := runConfigServer(t, 50*time.Millisecond)
	require.NoError(t, s.uploads.Acquire(context.Background()))
	defer s.uploads.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	select {
	case err := <-runAsync(ctx, s):
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("Run ignored the shutdown timeout")
	}
}

func TestRun_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := runConfigServer(t, time.Second)
	s.server.Addr = ln.Addr().String()

	select {
	case err := <-runAsync(context.Background(), s):
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not report the listen failure")
	}
}

func runAsync(ctx context.Context, s *Server) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return done
}
