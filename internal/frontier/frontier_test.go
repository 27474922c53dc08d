package frontier

import (
	"sync"
	"testing"
	"time"
)

func TestOfferRejectsDuplicateWhileQueued(t *testing.T) {
	f := New()
	if !f.Offer("https://ex.test/a") {
		t.Fatal("expected first offer to succeed")
	}
	if f.Offer("https://ex.test/a") {
		t.Fatal("expected duplicate offer while queued to fail")
	}
	if f.Size() != 1 {
		t.Fatalf("expected frontier size 1, got %d", f.Size())
	}
}

func TestOfferStripsFragment(t *testing.T) {
	f := New()
	f.Offer("https://ex.test/a#frag")
	if f.Offer("https://ex.test/a") {
		t.Fatal("expected fragment-stripped duplicate to be rejected")
	}
}

func TestOfferRejectsEmpty(t *testing.T) {
	f := New()
	if f.Offer("") {
		t.Fatal("expected empty url to be rejected")
	}
	if f.Offer("#justfrag") {
		t.Fatal("expected fragment-only url to be rejected")
	}
}

func TestClaimMarksVisitedAndRejectsReoffer(t *testing.T) {
	f := New()
	f.Offer("https://ex.test/a")

	url, ok := f.Claim()
	if !ok || url != "https://ex.test/a" {
		t.Fatalf("unexpected claim result: %q, %v", url, ok)
	}

	if f.Offer("https://ex.test/a") {
		t.Fatal("expected offer of a claimed (now visited) url to be rejected")
	}
	f.Release()
}

func TestClaimFIFOOrder(t *testing.T) {
	f := New()
	f.Offer("https://ex.test/a")
	f.Offer("https://ex.test/b")

	first, _ := f.Claim()
	f.Release()
	second, _ := f.Claim()
	f.Release()

	if first != "https://ex.test/a" || second != "https://ex.test/b" {
		t.Fatalf("unexpected order: %q, %q", first, second)
	}
}

func TestReleaseUnderflowPanics(t *testing.T) {
	f := New()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on active_workers underflow")
		}
	}()
	f.Release()
}

// TestConcurrentDedupSingleClaim offers the same URL from ten concurrent
// goroutines, then has eight workers race to claim it: exactly one should
// succeed.
func TestConcurrentDedupSingleClaim(t *testing.T) {
	f := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Offer("https://ex.test/x")
		}()
	}
	wg.Wait()

	var (
		mu      sync.Mutex
		claims  int
		workers sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			url, ok := f.Claim()
			if ok && url == "https://ex.test/x" {
				mu.Lock()
				claims++
				mu.Unlock()
				f.Release()
			} else if ok {
				f.Release()
			}
		}()
	}

	// Give blocked workers a moment to observe the stop signal, then
	// release them by stopping the crawl explicitly (no more work will
	// ever arrive in this test).
	time.Sleep(20 * time.Millisecond)
	f.Stop()
	workers.Wait()

	if claims != 1 {
		t.Fatalf("expected exactly one claim of the deduped url, got %d", claims)
	}
}

func TestStopWakesBlockedClaim(t *testing.T) {
	f := New()
	done := make(chan bool, 1)
	go func() {
		_, ok := f.Claim()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	f.Stop()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after stop with empty frontier")
		}
	case <-time.After(time.Second):
		t.Fatal("Claim did not wake up after Stop")
	}
}

func TestQuiescenceAutoStopsOnLastRelease(t *testing.T) {
	f := New()
	f.Offer("https://ex.test/a")
	url, ok := f.Claim()
	if !ok {
		t.Fatal("expected claim to succeed")
	}
	if url != "https://ex.test/a" {
		t.Fatalf("unexpected url: %q", url)
	}

	if f.Stopped() {
		t.Fatal("should not be stopped while a worker is active")
	}
	f.Release()
	if !f.Stopped() {
		t.Fatal("expected quiescence to trigger stop once frontier empty and active_workers == 0")
	}
}
