package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nikogura/resume-studio/pkg/config"
	"github.com/nikogura/resume-studio/pkg/llm"
	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/nikogura/resume-studio/pkg/session"
	"github.com/nikogura/resume-studio/pkg/store"
	"github.com/pkg/errors"
)

// openSession loads the config, opens the configured store and the saved session.
func openSession(ctx context.Context) (cfg config.Config, sess *session.Session, err error) {
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return cfg, sess, err
	}

	if getEphemeral() {
		cfg.Storage.Backend = config.BackendMemory
	}

	slog.Debug("opening session", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	var st store.Store
	st, err = store.Open(cfg.Storage)
	if err != nil {
		err = errors.Wrap(err, "failed to open session store")
		return cfg, sess, err
	}

	client := llm.NewClient(cfg.AnthropicAPIKey, cfg.GetGenerationModel(),
		llm.WithAnalysisModel(cfg.GetAnalysisModel()),
	)

	sess, err = session.New(ctx, session.Options{
		Store:         st,
		Generator:     client,
		Logger:        slog.Default(),
		HistoryLimit:  cfg.History.Limit,
		TargetJobRole: cfg.Defaults.TargetJobRole,
	})
	if err != nil {
		_ = st.Close()
		return cfg, sess, err
	}

	return cfg, sess, err
}

// closeSession flushes and closes the session, reporting but not failing on errors.
func closeSession(sess *session.Session) {
	err := sess.Close(context.Background())
	if err != nil {
		fmt.Printf("Warning: Failed to save session: %v\n", err)
	}
}

// userMessage turns an action error into the text shown to the user.
func userMessage(err error) (msg string) {
	var genErr *session.GenerationError
	switch {
	case errors.As(err, &genErr):
		msg = genErr.Notice
		if getVerbose() {
			msg += fmt.Sprintf(" (%v)", genErr.Err)
		}
	case errors.Is(err, session.ErrMissingInput):
		msg = strings.TrimSuffix(err.Error(), ": "+session.ErrMissingInput.Error())
		msg = capitalize(msg) + "."
	case errors.Is(err, session.ErrBusy):
		msg = "Another AI action is still running."
	default:
		msg = fmt.Sprintf("Error: %v", err)
	}
	return msg
}

func capitalize(s string) (out string) {
	if s == "" {
		return out
	}
	out = strings.ToUpper(s[:1]) + s[1:]
	return out
}

// resolveExperience finds the entry whose ID starts with prefix.
func resolveExperience(doc resume.Document, prefix string) (id string, err error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		err = errors.New("experience ID is required")
		return id, err
	}

	var matches []string
	for _, e := range doc.Experience {
		if strings.HasPrefix(e.ID, prefix) {
			matches = append(matches, e.ID)
		}
	}

	switch len(matches) {
	case 0:
		err = errors.Wrapf(resume.ErrNotFound, "no experience matches %q", prefix)
	case 1:
		id = matches[0]
	default:
		err = errors.Errorf("experience ID %q is ambiguous", prefix)
	}
	return id, err
}

// shortID is the prefix of an entry ID shown to the user.
func shortID(id string) (short string) {
	short = id
	if len(short) > 8 {
		short = short[:8]
	}
	return short
}

// unescapeInput converts literal \n in typed text to newlines.
func unescapeInput(text string) (unescaped string) {
	unescaped = strings.ReplaceAll(text, `\n`, "\n")
	return unescaped
}

// spinner provides a simple text-based progress indicator.
type spinner struct {
	message string
	stop    chan bool
	done    chan bool
	mu      sync.Mutex
	active  bool
}

func newSpinner(message string) (s *spinner) {
	s = &spinner{
		message: message,
		stop:    make(chan bool),
		done:    make(chan bool),
	}
	return s
}

func (s *spinner) start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		chars := []string{"|", "/", "-", "\\"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		fmt.Printf("%s ", s.message)
		for {
			select {
			case <-s.stop:
				fmt.Printf("\r%s\r", strings.Repeat(" ", len(s.message)+2))
				s.done <- true
				return
			case <-ticker.C:
				fmt.Printf("\r%s %s", s.message, chars[i%len(chars)])
				i++
			}
		}
	}()
}

func (s *spinner) stopSpinner() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stop <- true
	<-s.done

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// withSpinner runs fn while a spinner shows message.
func withSpinner(message string, fn func()) {
	sp := newSpinner(message)
	sp.start()
	defer sp.stopSpinner()

	fn()
}
