package progress

import (
	"math"
	"sync"
	"time"
)

// Snapshot is a point-in-time view of a run.
type Snapshot struct {
	Total     int           `json:"total"`
	Done      int           `json:"done"`
	Failed    int           `json:"failed"`
	Bytes     int64         `json:"bytes"`
	Remaining int           `json:"remaining"`
	RateEMA   float64       `json:"rate_per_sec"`
	ETAP50    time.Duration `json:"eta_p50"`
	ETAP90    time.Duration `json:"eta_p90"`
	Warmup    bool          `json:"warmup"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

type Config struct {
	Alpha          float64
	WindowSize     int
	WarmupSamples  int
	WarmupDuration time.Duration
	NotifyInterval time.Duration
	// SlowFallback scales the median rate when the window has no usable
	// P10 sample yet.
	SlowFallback float64
}

func DefaultConfig() Config {
	return Config{
		Alpha:          0.2,
		WindowSize:     60,
		WarmupSamples:  5,
		WarmupDuration: time.Second,
		NotifyInterval: 200 * time.Millisecond,
		SlowFallback:   0.6,
	}
}

// Estimator tracks completed items and derives rate and ETA. Safe for use
// from many workers.
type Estimator struct {
	mu         sync.Mutex
	cfg        Config
	now        func() time.Time
	start      time.Time
	lastUpdate time.Time
	lastNotify time.Time
	total      int
	done       int
	failed     int
	bytes      int64
	ema        float64
	window     *window
}

func NewEstimator(total int, cfg Config) *Estimator {
	base := DefaultConfig()
	if cfg.Alpha > 0 {
		base.Alpha = cfg.Alpha
	}
	if cfg.WindowSize > 0 {
		base.WindowSize = cfg.WindowSize
	}
	if cfg.WarmupSamples > 0 {
		base.WarmupSamples = cfg.WarmupSamples
	}
	if cfg.WarmupDuration > 0 {
		base.WarmupDuration = cfg.WarmupDuration
	}
	if cfg.NotifyInterval > 0 {
		base.NotifyInterval = cfg.NotifyInterval
	}
	if cfg.SlowFallback > 0 {
		base.SlowFallback = cfg.SlowFallback
	}
	e := &Estimator{cfg: base, now: time.Now, total: total, window: newWindow(base.WindowSize)}
	e.start = e.now()
	e.lastUpdate = e.start
	return e
}

// Advance records one finished item. The bool reports whether observers
// should be notified (rate limited by NotifyInterval, always true on the
// last item).
func (e *Estimator) Advance(bytes int64, failed bool) (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	if now.Before(e.lastUpdate) {
		now = e.lastUpdate
	}
	dt := now.Sub(e.lastUpdate).Seconds()
	if dt <= 0 {
		dt = 1e-6
	}
	e.done++
	if failed {
		e.failed++
	}
	e.bytes += bytes
	instant := 1 / dt
	if math.IsNaN(instant) || math.IsInf(instant, 0) {
		instant = 0
	}
	if e.ema == 0 {
		e.ema = instant
	} else {
		e.ema = e.cfg.Alpha*instant + (1-e.cfg.Alpha)*e.ema
	}
	e.window.Add(instant)
	e.lastUpdate = now
	snap := e.snapshotLocked(now)
	notify := now.Sub(e.lastNotify) >= e.cfg.NotifyInterval || snap.Remaining == 0
	if notify {
		e.lastNotify = now
	}
	return snap, notify
}

func (e *Estimator) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.now())
}

func (e *Estimator) snapshotLocked(now time.Time) Snapshot {
	remain := e.total - e.done
	if remain < 0 {
		remain = 0
	}
	elapsed := now.Sub(e.start)
	warm := e.done >= e.cfg.WarmupSamples && elapsed >= e.cfg.WarmupDuration
	p50 := e.window.Quantile(0.50)
	if p50 <= 0 {
		p50 = e.ema
	}
	p10 := e.window.Quantile(0.10)
	if p10 <= 0 {
		p10 = p50 * e.cfg.SlowFallback
	}
	var eta50, eta90 time.Duration
	if warm && remain > 0 {
		eta50 = durationFrom(float64(remain), p50)
		eta90 = durationFrom(float64(remain), p10)
	}
	return Snapshot{
		Total:     e.total,
		Done:      e.done,
		Failed:    e.failed,
		Bytes:     e.bytes,
		Remaining: remain,
		RateEMA:   e.ema,
		ETAP50:    eta50,
		ETAP90:    eta90,
		Warmup:    !warm,
		StartedAt: e.start,
		UpdatedAt: now,
		Elapsed:   elapsed,
	}
}

func durationFrom(count, rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	seconds := count / rate
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	if seconds > float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}
