// Package store persists the authoring session between runs.
//
// Only the document and the session fields are saved. Undo history and the
// suggestion tracker live for one process and start empty on every load.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/nikogura/resume-studio/pkg/config"
	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/pkg/errors"
)

// StateVersion is the version written into every saved state.
const StateVersion = 1

// State is the persisted part of a session.
type State struct {
	Version            int                   `json:"version"`
	Document           resume.Document       `json:"document"`
	Settings           resume.Settings       `json:"settings"`
	JobDescription     string                `json:"job_description"`
	TargetJobRole      string                `json:"target_job_role"`
	CompanyName        string                `json:"company_name"`
	HiringManager      string                `json:"hiring_manager"`
	CompanyAddress     string                `json:"company_address"`
	LearnedPreferences string                `json:"learned_preferences"`
	InterviewPrep      *resume.InterviewPrep `json:"interview_prep,omitempty"`
	SavedAt            time.Time             `json:"saved_at"`
}

// Store loads and saves session state.
type Store interface {
	// Load returns the saved state. found is false when nothing was saved yet.
	Load(ctx context.Context) (state State, found bool, err error)
	// Save replaces the saved state.
	Save(ctx context.Context, state State) (err error)
	// Clear removes the saved state.
	Clear(ctx context.Context) (err error)
	// Close releases the backend.
	Close() (err error)
}

// Open creates the store selected by cfg.
func Open(cfg config.StorageConfig) (s Store, err error) {
	switch cfg.Backend {
	case config.BackendMemory:
		s = NewMemoryStore()
		return s, err
	case config.BackendFile, config.BackendSQLite:
	default:
		err = errors.Errorf("unknown storage backend: %q", cfg.Backend)
		return s, err
	}

	if cfg.Path == "" {
		err = errors.Errorf("storage backend %s requires a path", cfg.Backend)
		return s, err
	}

	dir := filepath.Dir(cfg.Path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create storage directory: %s", dir)
		return s, err
	}

	if cfg.Backend == config.BackendSQLite {
		s, err = NewSQLiteStore(cfg.Path)
		return s, err
	}

	s = NewFileStore(cfg.Path)
	return s, err
}

// stateRecord shadows Document so that the raw bytes can go through
// resume.Upgrade before being decoded.
type stateRecord struct {
	State
	Document json.RawMessage `json:"document"`
}

func encodeState(state State) (data []byte, err error) {
	state.Version = StateVersion
	state.Document.Normalize()

	data, err = json.MarshalIndent(state, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal session state")
		return data, err
	}
	return data, err
}

func decodeState(data []byte) (state State, err error) {
	var rec stateRecord
	err = json.Unmarshal(data, &rec)
	if err != nil {
		err = errors.Wrap(err, "failed to parse session state")
		return state, err
	}

	if rec.State.Version > StateVersion {
		err = errors.Errorf("session state version %d is newer than supported version %d", rec.State.Version, StateVersion)
		return state, err
	}

	state = rec.State
	state.Document, err = resume.Upgrade(rec.Document)
	if err != nil {
		err = errors.Wrap(err, "failed to upgrade saved document")
		return state, err
	}

	state.Settings = state.Settings.WithDefaults()
	state.Version = StateVersion
	return state, err
}
