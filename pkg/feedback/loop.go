package feedback

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/nikogura/resume-studio/pkg/resume"
)

// Summarizer turns an AI original and the user's edit into one preference sentence.
type Summarizer interface {
	SummarizeDiff(ctx context.Context, original, edited string) (preference string, err error)
}

// Outcome describes what a Learn call did.
type Outcome int

const (
	// NoBaseline means the field holds no pending AI text.
	NoBaseline Outcome = iota
	// FieldMissing means the field no longer exists or is empty.
	FieldMissing
	// Unchanged means the user kept the AI text as is.
	Unchanged
	// Learned means a preference was appended and the baseline consumed.
	Learned
	// Failed means the summarizer failed; the baseline was still consumed.
	Failed
	// Superseded means a newer generation replaced the baseline while the
	// summarizer was running. The preference was appended, the newer
	// baseline was kept.
	Superseded
	// InFlight means another Learn call for the same field is running.
	InFlight
	// Skipped means the caller declined to run the loop, e.g. while busy.
	Skipped
)

// String returns the outcome name.
func (o Outcome) String() (s string) {
	switch o {
	case NoBaseline:
		s = "no-baseline"
	case FieldMissing:
		s = "field-missing"
	case Unchanged:
		s = "unchanged"
	case Learned:
		s = "learned"
	case Failed:
		s = "failed"
	case Superseded:
		s = "superseded"
	case InFlight:
		s = "in-flight"
	case Skipped:
		s = "skipped"
	default:
		s = "unknown"
	}
	return s
}

// Loop runs the learn-from-edit cycle.
type Loop struct {
	tracker     *Tracker
	preferences *Preferences
	summarizer  Summarizer
	logger      *slog.Logger

	mu       sync.Mutex
	inFlight map[resume.FieldID]bool
}

// NewLoop wires a loop over the given tracker and preference log.
func NewLoop(tracker *Tracker, preferences *Preferences, summarizer Summarizer, logger *slog.Logger) (loop *Loop) {
	if logger == nil {
		logger = slog.Default()
	}
	loop = &Loop{
		tracker:     tracker,
		preferences: preferences,
		summarizer:  summarizer,
		logger:      logger,
		inFlight:    make(map[resume.FieldID]bool),
	}
	return loop
}

// Learn compares the tracked baseline for field with edited, the field's
// current text. present is false when the field does not exist anymore.
// Summarizer failures are logged and absorbed; Learn never returns an error.
func (l *Loop) Learn(ctx context.Context, field resume.FieldID, edited string, present bool) (outcome Outcome) {
	if !l.claim(field) {
		outcome = InFlight
		return outcome
	}
	defer l.release(field)

	original, ok := l.tracker.Baseline(field)
	if !ok || original == "" {
		outcome = NoBaseline
		return outcome
	}

	if !present {
		// The entry is gone, so its baseline can never be learned from.
		l.tracker.ClearIf(field, original)
		outcome = FieldMissing
		return outcome
	}

	if edited == "" {
		outcome = FieldMissing
		return outcome
	}

	if original == edited {
		outcome = Unchanged
		return outcome
	}

	preference, err := l.summarizer.SummarizeDiff(ctx, original, edited)
	if err == nil {
		preference = singleLine(preference)
	}

	switch {
	case err != nil:
		l.logger.Warn("learning from edit failed", "field", field.String(), "error", err)
		outcome = Failed
	case preference == "":
		l.logger.Warn("learning from edit returned no preference", "field", field.String())
		outcome = Failed
	default:
		l.preferences.Append(preference)
		l.logger.Debug("learned preference", "field", field.String(), "preference", preference)
		outcome = Learned
	}

	// The baseline is consumed even on failure, unless a newer generation
	// has replaced it in the meantime.
	if !l.tracker.ClearIf(field, original) {
		if outcome == Learned {
			outcome = Superseded
		}
		l.logger.Debug("baseline replaced during learning", "field", field.String())
	}

	return outcome
}

func (l *Loop) claim(field resume.FieldID) (ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inFlight[field] {
		return ok
	}
	l.inFlight[field] = true
	ok = true
	return ok
}

func (l *Loop) release(field resume.FieldID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.inFlight, field)
}

// singleLine trims a model reply and folds it onto one line so that it
// survives the newline-joined log format.
func singleLine(s string) (line string) {
	line = strings.Join(strings.Fields(s), " ")
	line = strings.TrimPrefix(line, bullet)
	return line
}
