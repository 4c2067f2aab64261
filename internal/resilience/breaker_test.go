package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(2, time.Minute, nil)

	for i := 0; i < 2; i++ {
		if err := b.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err = %v, want errBoom", i, err)
		}
	}

	called := false
	err := b.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("fn ran while circuit was open")
	}
	if b.State() != StateOpen {
		t.Errorf("State() = %v, want open", b.State())
	}
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	now := time.Now()
	b := NewBreaker(1, 10*time.Second, nil)
	b.now = func() time.Time { return now }

	_ = b.Execute(func() error { return errBoom })
	if b.State() != StateOpen {
		t.Fatalf("State() = %v, want open", b.State())
	}

	now = now.Add(11 * time.Second)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe err = %v, want nil", err)
	}
	if b.State() != StateClosed {
		t.Errorf("State() = %v, want closed", b.State())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(3, time.Second, nil)
	b.now = func() time.Time { return now }
	b.state = StateOpen
	b.openedAt = now.Add(-2 * time.Second)

	_ = b.Execute(func() error { return errBoom })
	if b.State() != StateOpen {
		t.Errorf("State() = %v, want open", b.State())
	}
}

func TestBreaker_IgnoresUncountedErrors(t *testing.T) {
	rejected := errors.New("bad request")
	b := NewBreaker(1, time.Minute, func(err error) bool { return !errors.Is(err, rejected) })

	for i := 0; i < 3; i++ {
		if err := b.Execute(func() error { return rejected }); !errors.Is(err, rejected) {
			t.Fatalf("err = %v, want rejected", err)
		}
	}
	if b.State() != StateClosed {
		t.Errorf("State() = %v, want closed", b.State())
	}
}

func TestBreaker_NilRunsFn(t *testing.T) {
	var b *Breaker
	called := false
	if err := b.Execute(func() error { called = true; return nil }); err != nil {
		t.Fatalf("err = %v", err)
	}
	if !called {
		t.Error("nil breaker did not run fn")
	}
}
