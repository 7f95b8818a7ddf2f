// Package feedback learns writing preferences from user edits to
// AI-generated text.
//
// A Tracker remembers the exact text the model last produced for each field.
// When the user leaves a field, the Loop compares that baseline to what the
// field holds now and, if the user changed it, asks a Summarizer for a
// one-sentence preference that is appended to the Preferences log. The log is
// fed back into later generation requests.
package feedback

import (
	"sync"

	"github.com/nikogura/resume-studio/pkg/resume"
)

// Tracker maps fields to the AI-generated text they were last populated with.
type Tracker struct {
	mu        sync.Mutex
	baselines map[resume.FieldID]string
}

// NewTracker creates an empty tracker.
func NewTracker() (t *Tracker) {
	t = &Tracker{
		baselines: make(map[resume.FieldID]string),
	}
	return t
}

// RecordGenerated sets text as the baseline for field, replacing any earlier one.
func (t *Tracker) RecordGenerated(field resume.FieldID, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.baselines[field] = text
}

// Baseline returns the pending AI text for field, if any.
func (t *Tracker) Baseline(field resume.FieldID) (text string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	text, ok = t.baselines[field]
	return text, ok
}

// Clear removes the baseline for field.
func (t *Tracker) Clear(field resume.FieldID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.baselines, field)
}

// ClearIf removes the baseline for field only if it still equals text. It
// reports whether an entry was removed.
func (t *Tracker) ClearIf(field resume.FieldID, text string) (cleared bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.baselines[field]
	if ok && current == text {
		delete(t.baselines, field)
		cleared = true
	}
	return cleared
}

// ClearAll empties the tracker.
func (t *Tracker) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.baselines = make(map[resume.FieldID]string)
}

// Len returns the number of tracked fields.
func (t *Tracker) Len() (n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n = len(t.baselines)
	return n
}

// Fields returns the tracked field identifiers.
func (t *Tracker) Fields() (fields []resume.FieldID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fields = make([]resume.FieldID, 0, len(t.baselines))
	for field := range t.baselines {
		fields = append(fields, field)
	}
	return fields
}
