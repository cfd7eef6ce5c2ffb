package oneshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSendThenRecv(t *testing.T) {
	s, r := New[int]()
	if err := s.Send(19); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := r.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if got != 19 {
		t.Fatalf("got %d, want 19", got)
	}
}

func TestDropSenderThenRecv(t *testing.T) {
	s, r := New[int]()
	s.Close()
	_, err := r.Recv()
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("got %v, want ErrDisconnected", err)
	}
}

func TestDropReceiverThenSend(t *testing.T) {
	s, r := New[int]()
	r.Close()
	err := s.Send(5)
	var sendErr *SendError[int]
	if !errors.As(err, &sendErr) {
		t.Fatalf("got %v, want *SendError[int]", err)
	}
	if sendErr.Value() != 5 {
		t.Fatalf("got %d, want 5", sendErr.Value())
	}
}

func TestRecvThenSendFromAnotherGoroutine(t *testing.T) {
	s, r := New[int]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = s.Send(9)
	}()
	got, err := r.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if got != 9 {
		t.Fatalf("got %d, want 9", got)
	}
}

func TestTimeoutThenSend(t *testing.T) {
	s, r := New[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.RecvCtx(ctx)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}

	if err := s.Send(7); err != nil {
		t.Fatalf("Send: %v", err)
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	got, err := r.RecvCtx(ctx2)
	if err != nil {
		t.Fatalf("RecvCtx: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestSendThenDropReceiverWithoutRecv(t *testing.T) {
	s, r := New[int]()
	if err := s.Send(19); err != nil {
		t.Fatalf("Send: %v", err)
	}
	r.Close() // must not panic or deadlock
}

func TestTryRecvEmpty(t *testing.T) {
	s, r := New[string]()
	defer s.Close()
	_, err := r.TryRecv()
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("got %v, want ErrEmpty", err)
	}
}

func TestTryRecvValue(t *testing.T) {
	s, r := New[string]()
	if err := s.Send("hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := r.TryRecv()
	if err != nil {
		t.Fatalf("TryRecv: %v", err)
	}
	if got != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
	// A second try on the same handle observes the terminal state.
	if _, err := r.TryRecv(); !errors.Is(err, ErrDisconnected) {
		t.Fatalf("got %v, want ErrDisconnected", err)
	}
}

func TestRecvTwicePanics(t *testing.T) {
	s, r := New[int]()
	_ = s.Send(1)
	if _, err := r.Recv(); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("second Recv did not panic")
		}
	}()
	_, _ = r.Recv()
}

func TestSendTwicePanics(t *testing.T) {
	s, r := New[int]()
	defer r.Close()
	_ = s.Send(1)
	defer func() {
		if recover() == nil {
			t.Fatal("second Send did not panic")
		}
	}()
	_ = s.Send(2)
}

func TestRecvThenTryRecvSeesDisconnected(t *testing.T) {
	s, r := New[int]()
	if err := s.Send(19); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := r.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if got != 19 {
		t.Fatalf("got %d, want 19", got)
	}
	if _, err := r.TryRecv(); !errors.Is(err, ErrDisconnected) {
		t.Fatalf("got %v, want ErrDisconnected", err)
	}
}

func TestRecvThenRecvCtxSeesDisconnected(t *testing.T) {
	s, r := New[int]()
	if err := s.Send(19); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := r.Recv(); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := r.RecvCtx(ctx); !errors.Is(err, ErrDisconnected) {
		t.Fatalf("got %v, want ErrDisconnected", err)
	}
}

func TestRecvThenPollSeesDisconnected(t *testing.T) {
	s, r := New[int]()
	if err := s.Send(19); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := r.Recv(); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	got, err, ready := r.Poll(func() {})
	if !ready {
		t.Fatal("Poll did not report ready on an already-consumed channel")
	}
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("got %v, want ErrDisconnected", err)
	}
	var zero int
	if got != zero {
		t.Fatalf("got %v, want zero value", got)
	}
}

func TestPollPendingThenDelivered(t *testing.T) {
	s, r := New[int]()
	var woken sync.WaitGroup
	woken.Add(1)

	_, _, ready := r.Poll(func() { woken.Done() })
	if ready {
		t.Fatal("Poll reported ready before anything was sent")
	}

	if err := s.Send(42); err != nil {
		t.Fatalf("Send: %v", err)
	}
	woken.Wait()

	got, err, ready := r.Poll(func() {})
	if !ready {
		t.Fatal("Poll did not report ready after delivery")
	}
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestPollReplacesStaleWaker(t *testing.T) {
	s, r := New[int]()

	var firstCalled, secondCalled bool
	_, _, ready := r.Poll(func() { firstCalled = true })
	if ready {
		t.Fatal("unexpected ready on first Poll")
	}

	// Re-poll from a different context before anything wakes us. The
	// stale waker must be replaced, not left to fire alongside the new
	// one.
	_, _, ready = r.Poll(func() { secondCalled = true })
	if ready {
		t.Fatal("unexpected ready on second Poll")
	}

	if err := s.Send(1); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if firstCalled {
		t.Fatal("stale waker was invoked")
	}
	if !secondCalled {
		t.Fatal("current waker was never invoked")
	}

	got, err, ready := r.Poll(func() {})
	if !ready || err != nil || got != 1 {
		t.Fatalf("got (%v, %v, %v), want (1, nil, true)", got, err, ready)
	}
}

func TestPollDisconnected(t *testing.T) {
	s, r := New[int]()
	s.Close()
	got, err, ready := r.Poll(func() {})
	if !ready {
		t.Fatal("Poll did not report ready on a closed channel")
	}
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("got %v, want ErrDisconnected", err)
	}
	var zero int
	if got != zero {
		t.Fatalf("got %v, want zero value", got)
	}
}

func TestRecvCtxAlreadyDone(t *testing.T) {
	s, r := New[int]()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.RecvCtx(ctx)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
}
