package engine

import (
	"fmt"
	"strings"
)

// TraceEntry is one recorded engine event during a headless run.
type TraceEntry struct {
	Tick     int
	Session  string  // session id as "s3", or "--" for global events
	Category string  // tick, spawn, reclaim, session, perf, event
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] s1   spawn   continuous   snow owned=12
func (e TraceEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Session, e.Category, e.Key, e.Value)
}

// Trace collects structured engine events during a headless run. Unbounded
// and machine-readable; the test rig and the headless-report command
// attach one, production engines run without.
type Trace struct {
	entries []TraceEntry
	verbose bool
}

// NewTrace creates a Trace. If verbose is true, per-frame entries (tick
// deltas, per-particle reclaims) are also recorded.
func NewTrace(verbose bool) *Trace {
	return &Trace{verbose: verbose}
}

// Add records a new entry.
func (tr *Trace) Add(tick int, session, category, key, value string, numVal float64) {
	tr.entries = append(tr.entries, TraceEntry{
		Tick:     tick,
		Session:  session,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (tr *Trace) AddVerbose(tick int, session, category, key, value string, numVal float64) {
	if !tr.verbose {
		return
	}
	tr.Add(tick, session, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (tr *Trace) Entries() []TraceEntry {
	return tr.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (tr *Trace) Filter(category, key string) []TraceEntry {
	var out []TraceEntry
	for _, e := range tr.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterSession returns entries for a specific session label.
func (tr *Trace) FilterSession(label string) []TraceEntry {
	var out []TraceEntry
	for _, e := range tr.entries {
		if e.Session == label {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match the given category and key.
func (tr *Trace) Count(category, key string) int {
	return len(tr.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false.
func (tr *Trace) LastOf(category, key string) (TraceEntry, bool) {
	entries := tr.Filter(category, key)
	if len(entries) == 0 {
		return TraceEntry{}, false
	}
	return entries[len(entries)-1], true
}

// Format returns the full log as a single string for t.Log output.
func (tr *Trace) Format() string {
	var sb strings.Builder
	for _, e := range tr.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
