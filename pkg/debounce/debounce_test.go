package debounce

import (
	"sync"
	"testing"
	"time"
)

// recorder collects delivered values
type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

func TestBurstCollapsesToLastValue(t *testing.T) {
	r := &recorder{}
	d := New(100*time.Millisecond, r.record)
	defer d.Close()

	for _, v := range []string{"j", "jo", "joh", "john"} {
		d.Set(v)
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(250 * time.Millisecond)

	got := r.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected exactly one delivery, got %d: %v", len(got), got)
	}
	if got[0] != "john" {
		t.Errorf("expected last value 'john', got %q", got[0])
	}
}

func TestQuiescentValuesEachDeliver(t *testing.T) {
	r := &recorder{}
	d := New(20*time.Millisecond, r.record)
	defer d.Close()

	d.Set("first")
	time.Sleep(80 * time.Millisecond)
	d.Set("second")
	time.Sleep(80 * time.Millisecond)

	got := r.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected two deliveries, got %d: %v", len(got), got)
	}
	if got[0] != "first" || got[1] != "second" {
		t.Errorf("unexpected deliveries: %v", got)
	}
}

func TestCloseCancelsPendingDelivery(t *testing.T) {
	r := &recorder{}
	d := New(50*time.Millisecond, r.record)

	d.Set("never")
	d.Close()

	time.Sleep(150 * time.Millisecond)

	if got := r.snapshot(); len(got) != 0 {
		t.Errorf("expected no deliveries after Close, got %v", got)
	}
}

func TestSetAfterCloseIsIgnored(t *testing.T) {
	r := &recorder{}
	d := New(10*time.Millisecond, r.record)

	d.Close()
	d.Set("late")

	time.Sleep(50 * time.Millisecond)

	if got := r.snapshot(); len(got) != 0 {
		t.Errorf("expected no deliveries, got %v", got)
	}
}

func TestZeroDelayIsStillAsynchronous(t *testing.T) {
	delivered := make(chan string, 1)

	// The caller holds mu across Set. An inline delivery would deadlock
	// here; an asynchronous one blocks until Set has returned.
	var mu sync.Mutex
	d := New(0, func(v string) {
		mu.Lock()
		mu.Unlock()
		delivered <- v
	})
	defer d.Close()

	mu.Lock()
	d.Set("now")
	mu.Unlock()

	select {
	case v := <-delivered:
		if v != "now" {
			t.Errorf("expected 'now', got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("zero-delay delivery never fired")
	}
}

func TestSetDelayReschedulesPendingValue(t *testing.T) {
	delivered := make(chan string, 1)
	d := New(10*time.Second, func(v string) { delivered <- v })
	defer d.Close()

	d.Set("rescheduled")
	d.SetDelay(20 * time.Millisecond)

	select {
	case v := <-delivered:
		if v != "rescheduled" {
			t.Errorf("expected 'rescheduled', got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("delivery did not fire under the shortened delay")
	}
}

func TestSetDelayWithoutPendingDoesNotFire(t *testing.T) {
	r := &recorder{}
	d := New(time.Hour, r.record)
	defer d.Close()

	d.SetDelay(5 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	if got := r.snapshot(); len(got) != 0 {
		t.Errorf("expected no deliveries, got %v", got)
	}
}
