// Package session holds one authoring session: the resume under undo/redo
// history, the fields that surround it, and the AI actions that edit it.
//
// Every mutation is flushed to the store before the call returns. The undo
// history and the suggestion tracker are process local.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikogura/resume-studio/pkg/feedback"
	"github.com/nikogura/resume-studio/pkg/history"
	"github.com/nikogura/resume-studio/pkg/llm"
	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/nikogura/resume-studio/pkg/store"
	"github.com/pkg/errors"
)

// Generator produces text for the session. *llm.Client implements it.
type Generator interface {
	feedback.Summarizer
	SuggestSummary(ctx context.Context, req llm.SummaryRequest) (summary string, err error)
	SuggestExperience(ctx context.Context, req llm.ExperienceRequest) (bullets string, err error)
	EnhanceExperience(ctx context.Context, req llm.EnhanceRequest) (bullets string, err error)
	CoverLetter(ctx context.Context, req llm.CoverLetterRequest) (stream llm.ChunkStream)
	ATSCheck(ctx context.Context, resumeText string) (stream llm.ChunkStream)
	JobMatch(ctx context.Context, resumeText, jobDescription string) (stream llm.ChunkStream)
	InterviewPrep(ctx context.Context, resumeText, jobDescription string) (prep resume.InterviewPrep, err error)
}

var _ Generator = (*llm.Client)(nil)

// Options configures New.
type Options struct {
	Store store.Store
	// Generator may be nil, in which case AI actions fail with ErrNoGenerator.
	Generator Generator
	Logger    *slog.Logger
	// HistoryLimit bounds the undo history. Zero keeps every entry.
	HistoryLimit int
	// TargetJobRole seeds the role of a session that has never been saved.
	TargetJobRole string
}

// Session is the state of one authoring session.
type Session struct {
	store       store.Store
	generator   Generator
	logger      *slog.Logger
	history     *history.History[resume.Document]
	tracker     *feedback.Tracker
	preferences *feedback.Preferences
	loop        *feedback.Loop
	defaultRole string
	busy        atomic.Bool

	mu             sync.Mutex
	settings       resume.Settings
	jobDescription string
	targetJobRole  string
	companyName    string
	hiringManager  string
	companyAddress string
	interviewPrep  *resume.InterviewPrep
}

// New loads the saved session, or starts from the default document when
// nothing was saved yet.
func New(ctx context.Context, opts Options) (s *Session, err error) {
	if opts.Store == nil {
		err = errors.New("session store is required")
		return s, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var state store.State
	var found bool
	state, found, err = opts.Store.Load(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to load session")
		return s, err
	}

	if !found {
		state = store.State{
			Document:      resume.Default(),
			Settings:      resume.DefaultSettings(),
			TargetJobRole: opts.TargetJobRole,
		}
		logger.Debug("starting new session")
	}

	s = &Session{
		store:     opts.Store,
		generator: opts.Generator,
		logger:    logger,
		history: history.New(state.Document,
			history.WithEqual[resume.Document](resume.Equal),
			history.WithLimit[resume.Document](opts.HistoryLimit),
		),
		tracker:        feedback.NewTracker(),
		preferences:    feedback.ParsePreferences(state.LearnedPreferences),
		defaultRole:    opts.TargetJobRole,
		settings:       state.Settings.WithDefaults(),
		jobDescription: state.JobDescription,
		targetJobRole:  state.TargetJobRole,
		companyName:    state.CompanyName,
		hiringManager:  state.HiringManager,
		companyAddress: state.CompanyAddress,
		interviewPrep:  state.InterviewPrep,
	}
	s.loop = feedback.NewLoop(s.tracker, s.preferences, opts.Generator, logger)

	return s, err
}

// Close flushes the session and closes the store.
func (s *Session) Close(ctx context.Context) (err error) {
	err = s.flush(ctx)
	closeErr := s.store.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		err = errors.Wrap(closeErr, "failed to close store")
		return err
	}
	return err
}

// Document returns a copy of the current document.
func (s *Session) Document() (doc resume.Document) {
	doc = s.history.Current()
	return doc
}

// Edit applies fn to a copy of the current document and commits the result.
// changed is false when fn left the document as it was.
func (s *Session) Edit(ctx context.Context, fn func(doc *resume.Document)) (changed bool, err error) {
	doc := s.history.Current()
	fn(&doc)
	changed, err = s.SetDocument(ctx, doc)
	return changed, err
}

// SetDocument commits doc as the current document.
func (s *Session) SetDocument(ctx context.Context, doc resume.Document) (changed bool, err error) {
	doc.Normalize()
	err = doc.Validate()
	if err != nil {
		err = errors.Wrap(err, "invalid document")
		return changed, err
	}

	changed = s.history.Commit(doc)
	if !changed {
		return changed, err
	}

	err = s.flush(ctx)
	return changed, err
}

// Undo steps back one document state.
func (s *Session) Undo(ctx context.Context) (moved bool, err error) {
	moved = s.history.Undo()
	if moved {
		err = s.flush(ctx)
	}
	return moved, err
}

// Redo steps forward one document state.
func (s *Session) Redo(ctx context.Context) (moved bool, err error) {
	moved = s.history.Redo()
	if moved {
		err = s.flush(ctx)
	}
	return moved, err
}

// CanUndo reports whether Undo would change the document.
func (s *Session) CanUndo() (ok bool) {
	ok = s.history.CanUndo()
	return ok
}

// CanRedo reports whether Redo would change the document.
func (s *Session) CanRedo() (ok bool) {
	ok = s.history.CanRedo()
	return ok
}

// HistoryLen returns the number of document states kept for undo.
func (s *Session) HistoryLen() (n int) {
	n = s.history.Len()
	return n
}

// Busy reports whether an AI action is running.
func (s *Session) Busy() (busy bool) {
	busy = s.busy.Load()
	return busy
}

// PendingFields lists the fields that still hold unreviewed AI text.
func (s *Session) PendingFields() (fields []resume.FieldID) {
	fields = s.tracker.Fields()
	return fields
}

// SetJobDescription replaces the job description.
func (s *Session) SetJobDescription(ctx context.Context, jobDescription string) (err error) {
	s.mu.Lock()
	s.jobDescription = strings.TrimSpace(jobDescription)
	s.mu.Unlock()

	err = s.flush(ctx)
	return err
}

// JobDescription returns the job description.
func (s *Session) JobDescription() (jobDescription string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobDescription = s.jobDescription
	return jobDescription
}

// SetTargetJobRole replaces the role used for suggestions.
func (s *Session) SetTargetJobRole(ctx context.Context, role string) (err error) {
	s.mu.Lock()
	s.targetJobRole = strings.TrimSpace(role)
	s.mu.Unlock()

	err = s.flush(ctx)
	return err
}

// TargetJobRole returns the role used for suggestions.
func (s *Session) TargetJobRole() (role string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role = s.targetJobRole
	return role
}

// SetCompany replaces the cover letter addressee.
func (s *Session) SetCompany(ctx context.Context, name, hiringManager, address string) (err error) {
	s.mu.Lock()
	s.companyName = strings.TrimSpace(name)
	s.hiringManager = strings.TrimSpace(hiringManager)
	s.companyAddress = strings.TrimSpace(address)
	s.mu.Unlock()

	err = s.flush(ctx)
	return err
}

// Company returns the cover letter addressee.
func (s *Session) Company() (name, hiringManager, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.companyName, s.hiringManager, s.companyAddress
}

// SetSettings replaces the presentation settings.
func (s *Session) SetSettings(ctx context.Context, settings resume.Settings) (err error) {
	settings = settings.WithDefaults()
	err = settings.Validate()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	err = s.flush(ctx)
	return err
}

// Settings returns the presentation settings.
func (s *Session) Settings() (settings resume.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings = s.settings
	return settings
}

// Preferences returns the learned preference log.
func (s *Session) Preferences() (prefs *feedback.Preferences) {
	prefs = s.preferences
	return prefs
}

// ClearPreferences empties the learned preference log.
func (s *Session) ClearPreferences(ctx context.Context) (err error) {
	s.preferences.Clear()
	err = s.flush(ctx)
	return err
}

// InterviewPrepResult returns the last generated interview prep kit.
func (s *Session) InterviewPrepResult() (prep resume.InterviewPrep, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.interviewPrep == nil {
		return prep, ok
	}
	prep = *s.interviewPrep
	ok = true
	return prep, ok
}

// Reset discards the saved session and starts over from the default document.
func (s *Session) Reset(ctx context.Context) (err error) {
	if !s.acquire() {
		err = ErrBusy
		return err
	}
	defer s.release()

	err = s.store.Clear(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to clear saved session")
		return err
	}

	s.history.Reset(resume.Default())
	s.tracker.ClearAll()
	s.preferences.Clear()

	s.mu.Lock()
	s.settings = resume.DefaultSettings()
	s.jobDescription = ""
	s.targetJobRole = s.defaultRole
	s.companyName = ""
	s.hiringManager = ""
	s.companyAddress = ""
	s.interviewPrep = nil
	s.mu.Unlock()

	s.logger.Debug("session reset")
	return err
}

// acquire sets the busy flag. It reports false when it was already set.
func (s *Session) acquire() (ok bool) {
	ok = s.busy.CompareAndSwap(false, true)
	return ok
}

func (s *Session) release() {
	s.busy.Store(false)
}

func (s *Session) state() (state store.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prep *resume.InterviewPrep
	if s.interviewPrep != nil {
		p := *s.interviewPrep
		prep = &p
	}

	state = store.State{
		Version:            store.StateVersion,
		Document:           s.history.Current(),
		Settings:           s.settings,
		JobDescription:     s.jobDescription,
		TargetJobRole:      s.targetJobRole,
		CompanyName:        s.companyName,
		HiringManager:      s.hiringManager,
		CompanyAddress:     s.companyAddress,
		LearnedPreferences: s.preferences.String(),
		InterviewPrep:      prep,
		SavedAt:            time.Now().UTC(),
	}
	return state
}

// flush writes the current state to the store.
func (s *Session) flush(ctx context.Context) (err error) {
	err = s.store.Save(ctx, s.state())
	if err != nil {
		err = errors.Wrap(err, "failed to save session")
		return err
	}
	return err
}
