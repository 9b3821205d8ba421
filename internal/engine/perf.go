package engine

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"
)

// approxBytesPerParticle covers the record itself plus its table and
// session-set entries. Used only for the estimated memory metric.
const approxBytesPerParticle = 208

// Metrics is a point-in-time performance snapshot.
type Metrics struct {
	ParticleCount int
	FrameTime     float64 // most recent sample, ms
	FPS           int     // round(1000 / rolling average); 60 with no samples
	DroppedFrames int
	MemoryUsage   int // bytes, linear estimate in ParticleCount
}

// Monitor tracks rolling frame-time samples and exposes the degradation
// thresholds. It measures; the Engine decides policy. Subscribers receive
// every EndFrame snapshot, and a panicking subscriber is isolated so it
// cannot abort the frame loop.
type Monitor struct {
	samples []float64 // ring buffer, len == window once full
	head    int
	count   int
	window  int

	softMs float64
	hardMs float64

	dropped int
	clock   func() time.Time

	subs []*perfSub
}

type perfSub struct {
	fn func(Metrics)
}

// NewMonitor creates a monitor with the config's window and budgets.
// A nil clock means wall time.
func NewMonitor(cfg Config, clock func() time.Time) *Monitor {
	if clock == nil {
		clock = time.Now
	}
	return &Monitor{
		samples: make([]float64, cfg.PerfWindow),
		window:  cfg.PerfWindow,
		softMs:  cfg.SoftBudgetMs,
		hardMs:  cfg.FrameBudgetMs,
		clock:   clock,
	}
}

// StartFrame captures a monotonic start time for one frame sample.
func (m *Monitor) StartFrame() time.Time {
	return m.clock()
}

// EndFrame closes the sample opened by StartFrame, folds it into the
// rolling window (oldest evicted on overflow), counts it as dropped when
// it exceeds the hard budget, publishes the snapshot to subscribers, and
// returns it.
func (m *Monitor) EndFrame(start time.Time, particleCount int) Metrics {
	elapsed := float64(m.clock().Sub(start)) / float64(time.Millisecond)
	if elapsed < 0 {
		elapsed = 0
	}
	m.samples[m.head] = elapsed
	m.head = (m.head + 1) % m.window
	if m.count < m.window {
		m.count++
	}
	if elapsed > m.hardMs {
		m.dropped++
	}
	met := m.snapshot(elapsed, particleCount)
	m.publish(met)
	return met
}

// Snapshot builds a metrics snapshot from the current window state without
// recording a new sample.
func (m *Monitor) Snapshot(particleCount int) Metrics {
	return m.snapshot(m.lastSample(), particleCount)
}

func (m *Monitor) snapshot(frameTime float64, particleCount int) Metrics {
	fps := 60
	if avg := m.average(); avg > 0 {
		fps = int(math.Round(1000 / avg))
	}
	return Metrics{
		ParticleCount: particleCount,
		FrameTime:     frameTime,
		FPS:           fps,
		DroppedFrames: m.dropped,
		MemoryUsage:   particleCount * approxBytesPerParticle,
	}
}

func (m *Monitor) lastSample() float64 {
	if m.count == 0 {
		return 0
	}
	idx := (m.head - 1 + m.window) % m.window
	return m.samples[idx]
}

func (m *Monitor) average() float64 {
	if m.count == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < m.count; i++ {
		sum += m.samples[i]
	}
	return sum / float64(m.count)
}

// IsDegraded reports whether the rolling average exceeds the soft budget.
func (m *Monitor) IsDegraded() bool {
	return m.count > 0 && m.average() > m.softMs
}

// IsCritical reports whether the rolling average exceeds the hard budget.
func (m *Monitor) IsCritical() bool {
	return m.count > 0 && m.average() > m.hardMs
}

// Subscribe registers an observer for every EndFrame snapshot and returns
// its unsubscribe function.
func (m *Monitor) Subscribe(fn func(Metrics)) func() {
	s := &perfSub{fn: fn}
	m.subs = append(m.subs, s)
	return func() {
		for i, cur := range m.subs {
			if cur == s {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Monitor) publish(met Metrics) {
	for _, s := range m.subs {
		m.safeNotify(s.fn, met)
	}
}

func (m *Monitor) safeNotify(fn func(Metrics), met Metrics) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("glimmer: performance subscriber panicked: %v", r)
		}
	}()
	fn(met)
}

// FormatReport renders a metrics snapshot as a fixed-width text block,
// suitable for the HUD or a clipboard export.
func FormatReport(met Metrics) string {
	var sb strings.Builder
	sb.WriteString("--- Glimmer overlay metrics ---\n")
	fmt.Fprintf(&sb, "particles: %d\n", met.ParticleCount)
	fmt.Fprintf(&sb, "frame:     %.2f ms\n", met.FrameTime)
	fmt.Fprintf(&sb, "fps:       %d\n", met.FPS)
	fmt.Fprintf(&sb, "dropped:   %d\n", met.DroppedFrames)
	fmt.Fprintf(&sb, "memory:    %d bytes\n", met.MemoryUsage)
	return sb.String()
}
