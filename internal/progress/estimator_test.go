package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEstimatorAdvanceIsSequential(t *testing.T) {
	const workers = 128
	est := NewEstimator(workers, Config{NotifyInterval: time.Nanosecond})

	var wg sync.WaitGroup
	wg.Add(workers)
	start := make(chan struct{})
	results := make(chan int, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			snap, _ := est.Advance(1, false)
			results <- snap.Done
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	seen := make([]bool, workers)
	for r := range results {
		if r <= 0 || r > workers {
			t.Fatalf("進捗値が範囲外です: got=%d", r)
		}
		if seen[r-1] {
			t.Fatalf("進捗値が重複しました: got=%d", r)
		}
		seen[r-1] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("進捗値が欠落しています: index=%d", i+1)
		}
	}
	if snap := est.Snapshot(); snap.Bytes != workers || snap.Remaining != 0 {
		t.Fatalf("unexpected final snapshot %+v", snap)
	}
}

func TestEstimatorETAWithFakeClock(t *testing.T) {
	est := NewEstimator(10, Config{WarmupSamples: 2, WarmupDuration: time.Second, NotifyInterval: time.Hour})
	clock := est.start
	est.now = func() time.Time { return clock }

	for i := 0; i < 4; i++ {
		clock = clock.Add(500 * time.Millisecond)
		snap, notify := est.Advance(100, i == 1)
		if i == 0 && !notify {
			t.Fatal("first advance should notify")
		}
		if i > 0 && notify {
			t.Fatalf("advance %d should be rate limited", i)
		}
		if i == 3 {
			if snap.Warmup {
				t.Fatal("expected warmup to be over")
			}
			if snap.RateEMA < 1.99 || snap.RateEMA > 2.01 {
				t.Fatalf("expected rate 2/s, got %.3f", snap.RateEMA)
			}
			if snap.ETAP50 != 3*time.Second {
				t.Fatalf("expected ETA 3s for 6 items at 2/s, got %s", snap.ETAP50)
			}
			if snap.Failed != 1 {
				t.Fatalf("expected 1 failure, got %d", snap.Failed)
			}
		}
	}
}

func TestPercentClampsTo100(t *testing.T) {
	if got := percent(5, 4); got != 100 {
		t.Fatalf("5/4 は 100%% として扱うべきです: got=%d", got)
	}
	if got := percent(0, 0); got != 0 {
		t.Fatalf("0/0 should be 0, got %d", got)
	}
}

func TestWindowQuantile(t *testing.T) {
	w := newWindow(3)
	for _, v := range []float64{10, 1, 2, 3} {
		w.Add(v)
	}
	if got := w.Quantile(0.5); got != 2 {
		t.Fatalf("median of [1 2 3] = %v", got)
	}
	if got := w.Quantile(1); got != 3 {
		t.Fatalf("max = %v", got)
	}
	if got := newWindow(0).Quantile(0.5); got != 0 {
		t.Fatalf("empty window quantile = %v", got)
	}
}

func TestLineObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewAutoObserver(&buf)
	obs.Publish(Snapshot{Total: 4, Done: 2, Failed: 1, Warmup: true})
	obs.Done(Snapshot{})
	out := buf.String()
	if !strings.HasPrefix(out, "progress total=4 done=2 failed=1") || !strings.Contains(out, "eta_p50=-1") {
		t.Fatalf("unexpected line output %q", out)
	}
}

func TestRenderTTY(t *testing.T) {
	got := renderTTY(Snapshot{Total: 4, Done: 1, RateEMA: 2, ETAP50: 1500 * time.Millisecond})
	if got != "[batch]  25% 1/4 2.0/s ETA 00:00:02" {
		t.Fatalf("renderTTY = %q", got)
	}
	if got := formatETA(500 * time.Hour); got != "99:00:00" {
		t.Fatalf("formatETA clamp = %q", got)
	}
}
