package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/phyten/tagfilter/internal/termcolor"
)

type Observer interface {
	Publish(Snapshot)
	Done(Snapshot)
}

type NoopObserver struct{}

func (NoopObserver) Publish(Snapshot) {}
func (NoopObserver) Done(Snapshot)    {}

// ShouldShow decides whether to draw progress: never when disabled, always
// when forced, otherwise only when stderr is a terminal.
func ShouldShow(force, disable bool, stderr *os.File) bool {
	if disable {
		return false
	}
	return force || termcolor.IsTerminal(stderr)
}

type ttyObserver struct {
	w  io.Writer
	mu sync.Mutex
}

type lineObserver struct {
	w  io.Writer
	mu sync.Mutex
}

// NewAutoObserver redraws one status line on terminals and prints one
// key=value line per update elsewhere.
func NewAutoObserver(w io.Writer) Observer {
	if w == nil {
		w = os.Stderr
	}
	if f, ok := w.(*os.File); ok && termcolor.IsTerminal(f) {
		return &ttyObserver{w: w}
	}
	return &lineObserver{w: w}
}

func (o *ttyObserver) Publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintf(o.w, "\r\033[K%s", renderTTY(s))
}

func (o *ttyObserver) Done(Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprint(o.w, "\r\033[K")
}

func (o *lineObserver) Publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintln(o.w, renderLine(s))
}

func (o *lineObserver) Done(Snapshot) {}

func renderTTY(s Snapshot) string {
	rate := "--/s"
	if !s.Warmup && s.RateEMA > 0 {
		rate = fmt.Sprintf("%.1f/s", s.RateEMA)
	}
	eta := "--:--:--"
	if !s.Warmup && s.ETAP50 > 0 {
		eta = formatETA(s.ETAP50)
	}
	failed := ""
	if s.Failed > 0 {
		failed = fmt.Sprintf(" failed=%d", s.Failed)
	}
	return fmt.Sprintf("[batch] %3d%% %d/%d %s ETA %s%s", percent(s.Done, s.Total), s.Done, s.Total, rate, eta, failed)
}

func renderLine(s Snapshot) string {
	return fmt.Sprintf("progress total=%d done=%d failed=%d bytes=%d rate=%.3f eta_p50=%g eta_p90=%g warmup=%t updated_at=%s",
		s.Total, s.Done, s.Failed, s.Bytes, s.RateEMA, secondsOrNegOne(s.ETAP50), secondsOrNegOne(s.ETAP90), s.Warmup, s.UpdatedAt.Format(time.RFC3339Nano))
}

func formatETA(d time.Duration) string {
	total := int(math.Round(d.Seconds()))
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	if hours > 99 {
		hours = 99
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, (total%3600)/60, total%60)
}

func secondsOrNegOne(d time.Duration) float64 {
	if d <= 0 {
		return -1
	}
	return d.Seconds()
}

func percent(a, b int) int {
	if b <= 0 {
		if a <= 0 {
			return 0
		}
		return 100
	}
	if a <= 0 {
		return 0
	}
	p := a * 100 / b
	if p > 100 {
		return 100
	}
	return p
}
