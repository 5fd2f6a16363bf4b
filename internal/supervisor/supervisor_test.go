package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

type fakeServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns atomic.Int32
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdowns.Add(1)
	close(f.stop)
	return nil
}

func TestHTTPServerService_ShutdownOnCancel(t *testing.T) {
	srv := newFakeServer(nil)
	svc := NewHTTPServerService(srv, ":0", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("expected one Shutdown call, got %d", srv.shutdowns.Load())
	}
}

func TestHTTPServerService_ListenError(t *testing.T) {
	svc := NewHTTPServerService(newFakeServer(errors.New("address in use")), ":0", time.Second)
	if err := svc.Serve(context.Background()); err == nil {
		t.Error("expected listen error to surface")
	}
}

type fakeSweeper struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSweeper) SweepExpired(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	return 1, f.err
}

func TestSessionSweeperService_Ticks(t *testing.T) {
	sw := &fakeSweeper{err: errors.New("store down")}
	svc := NewSessionSweeperService(sw, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if sw.calls.Load() < 2 {
		t.Errorf("expected repeated sweeps despite errors, got %d", sw.calls.Load())
	}
}

func TestTree_RunsServices(t *testing.T) {
	sw := &fakeSweeper{}
	tree := NewTree(TreeConfig{ShutdownTimeout: time.Second})
	tree.Add(NewSessionSweeperService(sw, 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- tree.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for sw.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-errCh

	if sw.calls.Load() == 0 {
		t.Error("expected the supervised sweeper to run")
	}
}
