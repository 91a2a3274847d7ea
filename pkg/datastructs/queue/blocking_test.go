package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn until it reports true or the test budget runs out.
func eventually(t *testing.T, what string, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !fn() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func mustNew[T any](t *testing.T, capacity int, opts ...Option) *Blocking[T] {
	t.Helper()
	q, err := NewBlocking[T](capacity, opts...)
	if err != nil {
		t.Fatalf("NewBlocking(%d) error = %v", capacity, err)
	}
	return q
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNewBlocking(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  bool
	}{
		{"one", 1, false},
		{"small", 3, false},
		{"large", 1 << 20, false},
		{"zero_rejected", 0, true},
		{"negative_rejected", -1, true},
		{"negative_large_rejected", -1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewBlocking[int](tt.capacity)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidCapacity) {
					t.Errorf("error = %v, want ErrInvalidCapacity", err)
				}
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument", err)
				}
				if q != nil {
					t.Error("expected nil queue on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := q.Capacity(); got != tt.capacity {
				t.Errorf("Capacity() = %d, want %d", got, tt.capacity)
			}
			if !q.IsEmpty() || q.Size() != 0 {
				t.Error("new queue should be empty")
			}
			if got := q.RemainingCapacity(); got != tt.capacity {
				t.Errorf("RemainingCapacity() = %d, want %d", got, tt.capacity)
			}
		})
	}
}

// =============================================================================
// Capacity Tests
// =============================================================================

func TestCapacityBound(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
	}{
		{"capacity_1", 1},
		{"capacity_3", 3},
		{"capacity_past_initial_ring", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustNew[int](t, tt.capacity)
			for i := 0; i < tt.capacity; i++ {
				if err := q.PutTimeout(i, 0); err != nil {
					t.Fatalf("PutTimeout(%d) error = %v", i, err)
				}
			}
			if !q.IsFull() {
				t.Error("queue should be full")
			}
			if got := q.RemainingCapacity(); got != 0 {
				t.Errorf("RemainingCapacity() = %d, want 0", got)
			}

			err := q.PutTimeout(-1, 0)
			if !errors.Is(err, ErrTimeout) {
				t.Errorf("PutTimeout on full queue = %v, want ErrTimeout", err)
			}
			if q.Enqueue(-1) {
				t.Error("Enqueue on full queue should fail")
			}
			if got := q.Size(); got != tt.capacity {
				t.Errorf("Size() = %d, want %d", got, tt.capacity)
			}
		})
	}
}

// =============================================================================
// FIFO Tests
// =============================================================================

func TestFIFOOrder(t *testing.T) {
	q := mustNew[int](t, 3)
	for _, v := range []int{1, 2, 3} {
		if err := q.Put(v); err != nil {
			t.Fatalf("Put(%d) error = %v", v, err)
		}
	}
	for _, want := range []int{1, 2, 3} {
		got, err := q.Take()
		if err != nil || got != want {
			t.Errorf("Take() = (%d, %v), want (%d, nil)", got, err, want)
		}
	}
}

func TestFIFOOrder_AcrossWrapAndGrowth(t *testing.T) {
	q := mustNew[int](t, 64)
	next, want := 0, 0

	// Interleave so the ring wraps before and after it grows.
	for round := 0; round < 10; round++ {
		for i := 0; i < 7; i++ {
			if !q.Enqueue(next) {
				t.Fatalf("Enqueue(%d) failed", next)
			}
			next++
		}
		for i := 0; i < 3; i++ {
			v, ok := q.Dequeue()
			if !ok || v != want {
				t.Fatalf("Dequeue() = (%d, %v), want (%d, true)", v, ok, want)
			}
			want++
		}
	}
	for !q.IsEmpty() {
		v, _ := q.Dequeue()
		if v != want {
			t.Fatalf("Dequeue() = %d, want %d", v, want)
		}
		want++
	}
	if want != next {
		t.Errorf("drained %d items, want %d", want, next)
	}
}

func TestDuplicatesAllowed(t *testing.T) {
	q := mustNew[string](t, 3)
	for i := 0; i < 3; i++ {
		if err := q.Put("same"); err != nil {
			t.Fatalf("Put error = %v", err)
		}
	}
	if got := q.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
}

// =============================================================================
// Blocking Tests
// =============================================================================

func TestPut_BlocksUntilTake(t *testing.T) {
	q := mustNew[string](t, 1)
	if err := q.Put("A"); err != nil {
		t.Fatalf("Put(A) error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- q.Put("B")
	}()

	eventually(t, "producer to park", func() bool {
		p, _ := q.waiting()
		return p == 1
	})
	select {
	case err := <-done:
		t.Fatalf("Put(B) returned early: %v", err)
	default:
	}

	got, err := q.Take()
	if err != nil || got != "A" {
		t.Fatalf("Take() = (%q, %v), want (A, nil)", got, err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Put(B) error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Put(B) still blocked after Take")
	}
	if got := q.Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
	if got, _ := q.Take(); got != "B" {
		t.Errorf("Take() = %q, want B", got)
	}
}

func TestTake_BlocksUntilPut(t *testing.T) {
	q := mustNew[int](t, 2)

	got := make(chan int, 1)
	go func() {
		v, err := q.Take()
		if err != nil {
			t.Errorf("Take() error = %v", err)
		}
		got <- v
	}()

	eventually(t, "consumer to park", func() bool {
		_, c := q.waiting()
		return c == 1
	})
	if err := q.Put(42); err != nil {
		t.Fatalf("Put error = %v", err)
	}

	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("Take() = %d, want 42", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Take still blocked after Put")
	}
}

func TestPut_WakesOneConsumerPerItem(t *testing.T) {
	q := mustNew[int](t, 4)
	const consumers = 3

	var delivered atomic.Int32
	for i := 0; i < consumers; i++ {
		go func() {
			if _, err := q.Take(); err == nil {
				delivered.Add(1)
			}
		}()
	}
	eventually(t, "consumers to park", func() bool {
		_, c := q.waiting()
		return c == consumers
	})

	q.Put(1)
	eventually(t, "one consumer to be served", func() bool {
		return delivered.Load() == 1
	})
	if _, c := q.waiting(); c != consumers-1 {
		t.Errorf("parked consumers = %d, want %d", c, consumers-1)
	}

	q.Close()
	eventually(t, "remaining consumers to exit", func() bool {
		_, c := q.waiting()
		return c == 0
	})
	if got := delivered.Load(); got != 1 {
		t.Errorf("delivered = %d, want 1", got)
	}
}

// =============================================================================
// Timeout Tests
// =============================================================================

func TestTakeTimeout_Precision(t *testing.T) {
	q := mustNew[int](t, 1)

	start := time.Now()
	res := q.TakeTimeout(200 * time.Millisecond)
	elapsed := time.Since(start)

	if !res.TimedOut() {
		t.Fatalf("TakeTimeout status = %v, want timed_out", res.Status())
	}
	if !errors.Is(res.Err(), ErrTimeout) {
		t.Errorf("Err() = %v, want ErrTimeout", res.Err())
	}
	if elapsed < 200*time.Millisecond {
		t.Errorf("returned after %v, want >= 200ms", elapsed)
	}
	if elapsed > 400*time.Millisecond {
		t.Errorf("returned after %v, want < 400ms", elapsed)
	}
}

func TestPutTimeout_Precision(t *testing.T) {
	q := mustNew[int](t, 1)
	q.Put(1)

	start := time.Now()
	err := q.PutTimeout(2, 150*time.Millisecond)
	elapsed := time.Since(start)

	if !IsTimeout(err) {
		t.Fatalf("PutTimeout error = %v, want ErrTimeout", err)
	}
	if elapsed < 150*time.Millisecond || elapsed > 400*time.Millisecond {
		t.Errorf("returned after %v, want within [150ms, 400ms)", elapsed)
	}
	if got, _ := q.Take(); got != 1 {
		t.Errorf("queue content changed: Take() = %d, want 1", got)
	}
	if !q.IsEmpty() {
		t.Error("timed out put must not enqueue")
	}
}

func TestTimeout_ZeroAndNegativeNeverWait(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
	}{
		{"zero", 0},
		{"negative", -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustNew[int](t, 1)

			start := time.Now()
			if res := q.Poll(tt.timeout); !res.TimedOut() {
				t.Errorf("Poll on empty = %v, want timed_out", res.Status())
			}
			q.Put(1)
			if err := q.Offer(2, tt.timeout); !IsTimeout(err) {
				t.Errorf("Offer on full = %v, want ErrTimeout", err)
			}
			if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
				t.Errorf("non-blocking calls took %v", elapsed)
			}
		})
	}
}

func TestTimeout_SucceedsWhenReadyInTime(t *testing.T) {
	q := mustNew[int](t, 1)

	go func() {
		time.Sleep(50 * time.Millisecond)
		q.Put(7)
	}()

	res := q.TakeTimeout(2 * time.Second)
	v, ok := res.Value()
	if !ok || v != 7 {
		t.Errorf("TakeTimeout = (%d, %v), want (7, true)", v, ok)
	}
}

func TestTimeout_BudgetNotResetByWakeups(t *testing.T) {
	q := mustNew[int](t, 1)
	q.Put(0)

	// A consumer that keeps stealing the freed slot back wakes the
	// timed producer repeatedly without ever letting it in.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			q.mu.Lock()
			if q.buf.full() {
				q.buf.pop()
				q.notFull.signal()
				q.buf.push(0)
			}
			q.mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	start := time.Now()
	err := q.PutTimeout(1, 150*time.Millisecond)
	elapsed := time.Since(start)

	if !IsTimeout(err) {
		t.Fatalf("PutTimeout error = %v, want ErrTimeout", err)
	}
	if elapsed > 400*time.Millisecond {
		t.Errorf("spurious wakeups stretched the wait to %v", elapsed)
	}
}

func TestStats_CountTimeouts(t *testing.T) {
	q := mustNew[int](t, 1)
	q.Poll(0)
	q.Put(1)
	q.Offer(2, 0)
	q.Take()

	got := q.Stats()
	want := Stats{Puts: 1, Takes: 1, PutTimeouts: 1, TakeTimeouts: 1}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

// =============================================================================
// Context Tests
// =============================================================================

func TestTakeContext(t *testing.T) {
	t.Run("deadline", func(t *testing.T) {
		q := mustNew[int](t, 1)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := q.TakeContext(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("TakeContext error = %v, want DeadlineExceeded", err)
		}
	})

	t.Run("cancel_wakes_waiter", func(t *testing.T) {
		q := mustNew[int](t, 1)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			_, err := q.TakeContext(ctx)
			done <- err
		}()
		eventually(t, "consumer to park", func() bool {
			_, c := q.waiting()
			return c == 1
		})
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("TakeContext error = %v, want Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("TakeContext did not observe cancellation")
		}
		if _, c := q.waiting(); c != 0 {
			t.Errorf("cancelled waiter still parked: %d", c)
		}
	})

	t.Run("item_available", func(t *testing.T) {
		q := mustNew[int](t, 1)
		q.Put(9)
		v, err := q.TakeContext(context.Background())
		if err != nil || v != 9 {
			t.Errorf("TakeContext = (%d, %v), want (9, nil)", v, err)
		}
	})
}

func TestPutContext(t *testing.T) {
	q := mustNew[int](t, 1)
	q.Put(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := q.PutContext(ctx, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("PutContext error = %v, want DeadlineExceeded", err)
	}
	if got := q.Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
}

// =============================================================================
// Nil Item Tests
// =============================================================================

func TestNilItems(t *testing.T) {
	t.Run("accepted_by_default", func(t *testing.T) {
		q := mustNew[*int](t, 2)
		if err := q.Put(nil); err != nil {
			t.Fatalf("Put(nil) error = %v", err)
		}
		res := q.TakeTimeout(0)
		v, ok := res.Value()
		if !ok || v != nil {
			t.Errorf("TakeTimeout = (%v, %v), want (nil, true)", v, ok)
		}
	})

	t.Run("rejected_with_option", func(t *testing.T) {
		q := mustNew[any](t, 2, WithRejectNil())
		tests := []struct {
			name string
			item any
		}{
			{"untyped_nil", nil},
			{"nil_pointer", (*int)(nil)},
			{"nil_map", map[string]int(nil)},
			{"nil_slice", []int(nil)},
			{"nil_func", (func())(nil)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := q.Put(tt.item)
				if !errors.Is(err, ErrNilItem) || !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("Put(%v) error = %v, want ErrNilItem", tt.item, err)
				}
			})
		}
		if !q.IsEmpty() {
			t.Error("rejected items must not be enqueued")
		}
		if err := q.Put(0); err != nil {
			t.Errorf("Put(0) error = %v", err)
		}
	})
}

// =============================================================================
// Clear Tests
// =============================================================================

func TestClear(t *testing.T) {
	q := mustNew[int](t, 3)
	for i := 1; i <= 3; i++ {
		q.Put(i)
	}

	putDone := make(chan error, 1)
	go func() {
		putDone <- q.Put(4)
	}()

	takeResult := make(chan Result[int], 1)
	eventually(t, "producer to park", func() bool {
		p, _ := q.waiting()
		return p == 1
	})

	q.Clear()

	select {
	case err := <-putDone:
		if err != nil {
			t.Fatalf("pending Put error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Clear did not unblock the waiting producer")
	}
	if got := q.Size(); got != 1 {
		t.Errorf("Size() = %d, want 1 (only the unblocked item)", got)
	}
	if got := q.Stats().Cleared; got != 3 {
		t.Errorf("Stats().Cleared = %d, want 3", got)
	}

	// Drain, then make sure clear does not hand anything to a consumer.
	if v, _ := q.Take(); v != 4 {
		t.Errorf("Take() = %d, want 4", v)
	}
	go func() {
		takeResult <- q.TakeTimeout(300 * time.Millisecond)
	}()
	eventually(t, "consumer to park", func() bool {
		_, c := q.waiting()
		return c == 1
	})
	q.Clear()

	res := <-takeResult
	if !res.TimedOut() {
		t.Errorf("consumer got %v after Clear, want timed_out", res.Status())
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty")
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestClose(t *testing.T) {
	t.Run("rejects_puts", func(t *testing.T) {
		q := mustNew[int](t, 2)
		q.Close()
		if err := q.Put(1); !errors.Is(err, ErrClosed) {
			t.Errorf("Put after Close = %v, want ErrClosed", err)
		}
		if q.Enqueue(1) {
			t.Error("Enqueue after Close should fail")
		}
		if !q.IsClosed() {
			t.Error("IsClosed() = false")
		}
	})

	t.Run("drains_then_reports_closed", func(t *testing.T) {
		q := mustNew[int](t, 2)
		q.Put(1)
		q.Put(2)
		q.Close()
		q.Close()

		for _, want := range []int{1, 2} {
			v, err := q.Take()
			if err != nil || v != want {
				t.Errorf("Take() = (%d, %v), want (%d, nil)", v, err, want)
			}
		}
		if _, err := q.Take(); !errors.Is(err, ErrClosed) {
			t.Errorf("Take on drained closed queue = %v, want ErrClosed", err)
		}
		if res := q.Poll(time.Second); !res.Closed() {
			t.Errorf("Poll on drained closed queue = %v, want closed", res.Status())
		}
	})

	t.Run("wakes_all_waiters", func(t *testing.T) {
		full := mustNew[int](t, 1)
		full.Put(0)
		empty := mustNew[int](t, 1)

		var wg sync.WaitGroup
		errs := make(chan error, 4)
		for i := 0; i < 2; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				errs <- full.Put(1)
			}()
			go func() {
				defer wg.Done()
				_, err := empty.Take()
				errs <- err
			}()
		}
		eventually(t, "waiters to park", func() bool {
			p, _ := full.waiting()
			_, c := empty.waiting()
			return p == 2 && c == 2
		})

		full.Close()
		empty.Close()
		wg.Wait()
		close(errs)

		for err := range errs {
			if !errors.Is(err, ErrClosed) {
				t.Errorf("waiter error = %v, want ErrClosed", err)
			}
		}
	})
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestConcurrent_NoLossNoDuplication(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		producers int
		consumers int
		perProd   int
	}{
		{"1P1C_cap1", 1, 1, 1, 2000},
		{"4P4C_cap3", 3, 4, 4, 2000},
		{"8P2C_cap16", 16, 8, 2, 1000},
		{"2P8C_cap64", 64, 2, 8, 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustNew[int](t, tt.capacity)
			total := tt.producers * tt.perProd
			seen := make([]atomic.Int32, total)

			var producers sync.WaitGroup
			producers.Add(tt.producers)
			for p := 0; p < tt.producers; p++ {
				go func(id int) {
					defer producers.Done()
					for i := 0; i < tt.perProd; i++ {
						if err := q.Put(id*tt.perProd + i); err != nil {
							t.Errorf("Put error = %v", err)
							return
						}
					}
				}(p)
			}

			var consumed atomic.Int64
			var consumers sync.WaitGroup
			consumers.Add(tt.consumers)
			for c := 0; c < tt.consumers; c++ {
				go func() {
					defer consumers.Done()
					for {
						v, err := q.Take()
						if err != nil {
							return
						}
						seen[v].Add(1)
						consumed.Add(1)
					}
				}()
			}

			producers.Wait()
			eventually(t, "consumers to drain", func() bool {
				return consumed.Load() == int64(total)
			})
			q.Close()
			consumers.Wait()

			for i := range seen {
				if n := seen[i].Load(); n != 1 {
					t.Fatalf("item %d observed %d times", i, n)
				}
			}
		})
	}
}

func TestConcurrent_ProducerOrderPreserved(t *testing.T) {
	q := mustNew[[2]int](t, 5)
	const producers, perProd = 4, 1000

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				q.Put([2]int{id, i})
			}
		}(p)
	}
	go func() {
		wg.Wait()
		q.Close()
	}()

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for {
		v, err := q.Take()
		if err != nil {
			break
		}
		if v[1] != last[v[0]]+1 {
			t.Fatalf("producer %d: got seq %d after %d", v[0], v[1], last[v[0]])
		}
		last[v[0]] = v[1]
	}
	for id, seq := range last {
		if seq != perProd-1 {
			t.Errorf("producer %d: last seq %d, want %d", id, seq, perProd-1)
		}
	}
}

func TestConcurrent_TimedProducersAndConsumers(t *testing.T) {
	q := mustNew[int](t, 2)
	const producers, perProd = 3, 300

	var produced atomic.Int64
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProd; {
				// A timeout means "try again later".
				if err := q.PutTimeout(id*perProd+i, time.Millisecond); err == nil {
					produced.Add(1)
					i++
				}
			}
		}(p)
	}

	consumed := 0
	for consumed < producers*perProd {
		if res := q.Poll(time.Millisecond); res.Ok() {
			consumed++
		}
	}
	wg.Wait()

	if got := produced.Load(); got != producers*perProd {
		t.Errorf("produced = %d, want %d", got, producers*perProd)
	}
	if !q.IsEmpty() {
		t.Errorf("queue not drained: %d left", q.Size())
	}
}
