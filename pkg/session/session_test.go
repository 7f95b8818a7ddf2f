package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nikogura/resume-studio/pkg/feedback"
	"github.com/nikogura/resume-studio/pkg/llm"
	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/nikogura/resume-studio/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceStream struct {
	chunks []string
	err    error
	next   int
	chunk  string
	closed bool
}

func (s *sliceStream) Next() (ok bool) {
	if s.next >= len(s.chunks) {
		return ok
	}
	s.chunk = s.chunks[s.next]
	s.next++
	ok = true
	return ok
}

func (s *sliceStream) Chunk() (chunk string) {
	chunk = s.chunk
	return chunk
}

func (s *sliceStream) Err() (err error) {
	if s.next < len(s.chunks) {
		return err
	}
	err = s.err
	return err
}

func (s *sliceStream) Close() (err error) {
	s.closed = true
	return err
}

type fakeGenerator struct {
	mu sync.Mutex

	reply      string
	err        error
	preference string
	learnErr   error
	chunks     []string
	streamErr  error
	prep       resume.InterviewPrep
	during     func()

	summaryReqs    []llm.SummaryRequest
	experienceReqs []llm.ExperienceRequest
	enhanceReqs    []llm.EnhanceRequest
	coverReqs      []llm.CoverLetterRequest
	resumeTexts    []string
	diffs          [][2]string
	streams        []*sliceStream
}

func (f *fakeGenerator) hook() {
	f.mu.Lock()
	during := f.during
	f.mu.Unlock()

	if during != nil {
		during()
	}
}

func (f *fakeGenerator) stream() (stream llm.ChunkStream) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := &sliceStream{chunks: f.chunks, err: f.streamErr}
	f.streams = append(f.streams, s)
	stream = s
	return stream
}

func (f *fakeGenerator) SuggestSummary(ctx context.Context, req llm.SummaryRequest) (summary string, err error) {
	f.mu.Lock()
	f.summaryReqs = append(f.summaryReqs, req)
	f.mu.Unlock()
	f.hook()

	return f.reply, f.err
}

func (f *fakeGenerator) SuggestExperience(ctx context.Context, req llm.ExperienceRequest) (bullets string, err error) {
	f.mu.Lock()
	f.experienceReqs = append(f.experienceReqs, req)
	f.mu.Unlock()
	f.hook()

	return f.reply, f.err
}

func (f *fakeGenerator) EnhanceExperience(ctx context.Context, req llm.EnhanceRequest) (bullets string, err error) {
	f.mu.Lock()
	f.enhanceReqs = append(f.enhanceReqs, req)
	f.mu.Unlock()
	f.hook()

	return f.reply, f.err
}

func (f *fakeGenerator) SummarizeDiff(ctx context.Context, original, edited string) (preference string, err error) {
	f.mu.Lock()
	f.diffs = append(f.diffs, [2]string{original, edited})
	f.mu.Unlock()

	return f.preference, f.learnErr
}

func (f *fakeGenerator) CoverLetter(ctx context.Context, req llm.CoverLetterRequest) (stream llm.ChunkStream) {
	f.mu.Lock()
	f.coverReqs = append(f.coverReqs, req)
	f.mu.Unlock()

	return f.stream()
}

func (f *fakeGenerator) ATSCheck(ctx context.Context, resumeText string) (stream llm.ChunkStream) {
	f.mu.Lock()
	f.resumeTexts = append(f.resumeTexts, resumeText)
	f.mu.Unlock()

	return f.stream()
}

func (f *fakeGenerator) JobMatch(ctx context.Context, resumeText, jobDescription string) (stream llm.ChunkStream) {
	f.mu.Lock()
	f.resumeTexts = append(f.resumeTexts, resumeText)
	f.mu.Unlock()

	return f.stream()
}

func (f *fakeGenerator) InterviewPrep(ctx context.Context, resumeText, jobDescription string) (prep resume.InterviewPrep, err error) {
	f.mu.Lock()
	f.resumeTexts = append(f.resumeTexts, resumeText)
	f.mu.Unlock()

	return f.prep, f.err
}

func quietLogger() (logger *slog.Logger) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return logger
}

// newSession starts a session over a memory store seeded with state.
func newSession(t *testing.T, gen *fakeGenerator, state *store.State) (s *Session, st *store.MemoryStore) {
	t.Helper()

	st = store.NewMemoryStore()
	if state != nil {
		require.NoError(t, st.Save(context.Background(), *state))
	}

	var generator Generator
	if gen != nil {
		generator = gen
	}

	s, err := New(context.Background(), Options{
		Store:         st,
		Generator:     generator,
		Logger:        quietLogger(),
		TargetJobRole: "Staff Engineer",
	})
	require.NoError(t, err)
	return s, st
}

func savedState(t *testing.T, st store.Store) (state store.State) {
	t.Helper()

	state, found, err := st.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	return state
}

func blankSummaryState() (state *store.State) {
	doc := resume.Default()
	doc.Summary = ""
	state = &store.State{
		Version:       store.StateVersion,
		Document:      doc,
		Settings:      resume.DefaultSettings(),
		TargetJobRole: "Platform Engineer",
	}
	return state
}

func TestNewStartsFromDefaults(t *testing.T) {
	s, st := newSession(t, &fakeGenerator{}, nil)

	doc := s.Document()
	assert.Equal(t, "Jane Doe", doc.PersonalInfo.Name)
	assert.Len(t, doc.Experience, 1)
	assert.Equal(t, "Staff Engineer", s.TargetJobRole())
	assert.Equal(t, resume.DefaultSettings(), s.Settings())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.Equal(t, 1, s.HistoryLen())
	assert.Equal(t, 0, st.Saves(), "loading must not write")
}

func TestNewLoadsSavedState(t *testing.T) {
	state := blankSummaryState()
	state.JobDescription = "Run the platform."
	state.CompanyName = "Acme"
	state.LearnedPreferences = "- prefers short sentences\n- avoids buzzwords"
	state.InterviewPrep = &resume.InterviewPrep{TechnicalQuestions: []string{"What is a goroutine?"}}

	s, _ := newSession(t, &fakeGenerator{}, state)

	assert.Equal(t, "Platform Engineer", s.TargetJobRole())
	assert.Equal(t, "Run the platform.", s.JobDescription())
	name, _, _ := s.Company()
	assert.Equal(t, "Acme", name)
	assert.Equal(t, []string{"prefers short sentences", "avoids buzzwords"}, s.Preferences().Lines())
	assert.Empty(t, s.PendingFields(), "baselines are never restored")

	prep, ok := s.InterviewPrepResult()
	require.True(t, ok)
	assert.Equal(t, []string{"What is a goroutine?"}, prep.TechnicalQuestions)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func TestEditUndoRedoFlush(t *testing.T) {
	ctx := context.Background()
	s, st := newSession(t, nil, nil)

	changed, err := s.Edit(ctx, func(doc *resume.Document) {
		doc.Summary = "Builds reliable systems."
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Builds reliable systems.", savedState(t, st).Document.Summary)

	changed, err = s.Edit(ctx, func(doc *resume.Document) {
		doc.Summary = "Builds reliable systems."
	})
	require.NoError(t, err)
	assert.False(t, changed, "an equal document is not a new entry")
	assert.Equal(t, 2, s.HistoryLen())

	moved, err := s.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, resume.Default().Summary, s.Document().Summary)
	assert.Equal(t, resume.Default().Summary, savedState(t, st).Document.Summary)

	moved, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = s.Redo(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "Builds reliable systems.", savedState(t, st).Document.Summary)
	assert.False(t, s.CanRedo())
}

func TestEditRejectsInvalidDocument(t *testing.T) {
	s, st := newSession(t, nil, nil)

	_, err := s.Edit(context.Background(), func(doc *resume.Document) {
		doc.Experience = append(doc.Experience, doc.Experience[0])
	})
	require.Error(t, err)
	assert.Equal(t, 1, s.HistoryLen())
	assert.Equal(t, 0, st.Saves())
}

func TestEditDoesNotAliasDocument(t *testing.T) {
	s, _ := newSession(t, nil, nil)

	doc := s.Document()
	doc.Experience[0].JobTitle = "changed outside"

	assert.Equal(t, "Senior Project Manager", s.Document().Experience[0].JobTitle)
}

func TestFullFeedbackCycle(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "A seasoned engineer.", preference: "prefers quantified experience"}
	s, st := newSession(t, gen, blankSummaryState())

	summary, err := s.SuggestSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A seasoned engineer.", summary)
	assert.Equal(t, 2, s.HistoryLen())
	assert.Equal(t, []resume.FieldID{resume.SummaryField()}, s.PendingFields())

	_, err = s.Edit(ctx, func(doc *resume.Document) {
		doc.Summary = "A results-driven engineer with 5 years experience."
	})
	require.NoError(t, err)
	entries := s.HistoryLen()

	outcome := s.FieldBlur(ctx, resume.SummaryField())
	assert.Equal(t, feedback.Learned, outcome)
	assert.Equal(t, "- prefers quantified experience", s.Preferences().String())
	assert.Empty(t, s.PendingFields())
	assert.Equal(t, entries, s.HistoryLen(), "learning never touches the document")
	assert.Equal(t, [][2]string{{"A seasoned engineer.", "A results-driven engineer with 5 years experience."}}, gen.diffs)
	assert.Equal(t, "- prefers quantified experience", savedState(t, st).LearnedPreferences)

	assert.Equal(t, feedback.NoBaseline, s.FieldBlur(ctx, resume.SummaryField()))
	assert.Len(t, gen.diffs, 1)

	_, err = s.SuggestSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "- prefers quantified experience", gen.summaryReqs[1].Preferences)
	assert.Equal(t, "Platform Engineer", gen.summaryReqs[1].TargetJobRole)
}

func TestFieldBlurUnchangedKeepsBaseline(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "A seasoned engineer."}
	s, _ := newSession(t, gen, blankSummaryState())

	_, err := s.SuggestSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, feedback.Unchanged, s.FieldBlur(ctx, resume.SummaryField()))
	assert.Len(t, s.PendingFields(), 1)
	assert.Empty(t, gen.diffs)
}

func TestLearnFailureConsumesBaseline(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "A seasoned engineer.", learnErr: errors.New("quota exceeded")}
	s, _ := newSession(t, gen, blankSummaryState())

	_, err := s.SuggestSummary(ctx)
	require.NoError(t, err)
	_, err = s.Edit(ctx, func(doc *resume.Document) {
		doc.Summary = "My own words."
	})
	require.NoError(t, err)

	assert.Equal(t, feedback.Failed, s.FieldBlur(ctx, resume.SummaryField()))
	assert.Equal(t, 0, s.Preferences().Len())
	assert.Empty(t, s.PendingFields())
	assert.False(t, s.Busy())
}

func TestSuggestSummaryRequiresRole(t *testing.T) {
	state := blankSummaryState()
	state.TargetJobRole = ""
	gen := &fakeGenerator{reply: "unused"}
	s, _ := newSession(t, gen, state)

	_, err := s.SuggestSummary(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Contains(t, err.Error(), "a target job role")
	assert.Empty(t, gen.summaryReqs)
	assert.False(t, s.Busy())
}

func TestSuggestionFailureLeavesDocument(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("network down")}
	s, st := newSession(t, gen, blankSummaryState())

	_, err := s.SuggestSummary(context.Background())
	require.Error(t, err)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "An error occurred while generating the summary. Please try again.", genErr.Notice)
	assert.EqualError(t, genErr.Err, "network down")

	assert.Empty(t, s.Document().Summary)
	assert.Equal(t, 1, s.HistoryLen())
	assert.Empty(t, s.PendingFields())
	assert.False(t, s.Busy())
	assert.Equal(t, 1, st.Saves(), "only the seed save")
}

func TestAIActionsWithoutGenerator(t *testing.T) {
	s, _ := newSession(t, nil, nil)

	_, err := s.SuggestSummary(context.Background())
	assert.True(t, errors.Is(err, ErrNoGenerator))
	assert.Equal(t, feedback.Skipped, s.FieldBlur(context.Background(), resume.SummaryField()))
}

func TestBusyRejectsSecondAction(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "A seasoned engineer.", preference: "unused"}
	s, _ := newSession(t, gen, blankSummaryState())

	var nestedErr error
	var nestedBlur feedback.Outcome
	gen.during = func() {
		assert.True(t, s.Busy())
		_, nestedErr = s.SuggestSummary(ctx)
		nestedBlur = s.FieldBlur(ctx, resume.SummaryField())
	}

	_, err := s.SuggestSummary(ctx)
	require.NoError(t, err)
	assert.True(t, errors.Is(nestedErr, ErrBusy))
	assert.Equal(t, feedback.Skipped, nestedBlur)
	assert.Len(t, gen.summaryReqs, 1)
	assert.False(t, s.Busy())

	gen.during = func() {
		assert.True(t, errors.Is(s.Reset(ctx), ErrBusy))
	}
	_, err = s.SuggestSummary(ctx)
	require.NoError(t, err)
}

func TestSuggestExperienceKeyedByEntryID(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "- Ran the on-call rotation.", preference: "prefers first person"}
	s, _ := newSession(t, gen, nil)

	var added string
	_, err := s.Edit(ctx, func(doc *resume.Document) {
		added = doc.AddExperience()
		index, _ := doc.FindExperience(added)
		doc.Experience[index].JobTitle = "SRE"
		doc.Experience[index].Company = "Initech"
	})
	require.NoError(t, err)

	_, err = s.SuggestExperience(ctx, added)
	require.NoError(t, err)
	require.Len(t, gen.experienceReqs, 1)
	assert.Equal(t, llm.ExperienceRequest{TargetJobRole: "Staff Engineer", JobTitle: "SRE", Company: "Initech"}, gen.experienceReqs[0])

	field := resume.ExperienceField(added)
	assert.Equal(t, []resume.FieldID{field}, s.PendingFields())

	// Reorder, then edit the generated entry through its new position.
	_, err = s.Edit(ctx, func(doc *resume.Document) {
		require.NoError(t, doc.MoveExperience(added, -1))
		doc.Experience[0].Responsibilities = "- I ran the on-call rotation."
	})
	require.NoError(t, err)

	assert.Equal(t, feedback.Learned, s.FieldBlur(ctx, field))
	assert.Equal(t, [][2]string{{"- Ran the on-call rotation.", "- I ran the on-call rotation."}}, gen.diffs)
}

func TestSuggestExperienceInputs(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "unused"}
	s, _ := newSession(t, gen, nil)

	_, err := s.SuggestExperience(ctx, "missing-id")
	assert.True(t, errors.Is(err, resume.ErrNotFound))

	var blank string
	_, err = s.Edit(ctx, func(doc *resume.Document) {
		blank = doc.AddExperience()
	})
	require.NoError(t, err)

	_, err = s.SuggestExperience(ctx, blank)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Contains(t, err.Error(), "a job title")
	assert.Empty(t, gen.experienceReqs)
}

func TestEnhanceExperience(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "- Delivered 12 projects on schedule."}
	s, _ := newSession(t, gen, nil)

	id := s.Document().Experience[0].ID
	bullets, err := s.EnhanceExperience(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "- Delivered 12 projects on schedule.", bullets)
	assert.Equal(t, bullets, s.Document().Experience[0].Responsibilities)

	require.Len(t, gen.enhanceReqs, 1)
	assert.Equal(t, "Senior Project Manager", gen.enhanceReqs[0].JobTitle)
	assert.Contains(t, gen.enhanceReqs[0].Points, "Led cross-functional teams")
	assert.Equal(t, []resume.FieldID{resume.ExperienceField(id)}, s.PendingFields())
}

func TestEnhanceExperienceRequiresResponsibilities(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "unused"}
	s, _ := newSession(t, gen, nil)

	id := s.Document().Experience[0].ID
	_, err := s.Edit(ctx, func(doc *resume.Document) {
		doc.Experience[0].JobTitle = ""
		doc.Experience[0].Responsibilities = ""
	})
	require.NoError(t, err)

	_, err = s.EnhanceExperience(ctx, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Contains(t, err.Error(), "please add a job title and some responsibilities")
}

func TestRemovedEntryIsNotLearned(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "- Generated.", preference: "unused"}
	s, _ := newSession(t, gen, nil)

	id := s.Document().Experience[0].ID
	_, err := s.SuggestExperience(ctx, id)
	require.NoError(t, err)

	_, err = s.Edit(ctx, func(doc *resume.Document) {
		require.NoError(t, doc.RemoveExperience(id))
	})
	require.NoError(t, err)

	require.Len(t, s.PendingFields(), 1)
	assert.Equal(t, feedback.FieldMissing, s.FieldBlur(ctx, resume.ExperienceField(id)))
	assert.Empty(t, gen.diffs)
	assert.Empty(t, s.PendingFields())
}

func coverLetterState() (state *store.State) {
	doc := resume.Default()
	doc.CoverLetter = "Old letter."
	state = &store.State{
		Version:        store.StateVersion,
		Document:       doc,
		Settings:       resume.DefaultSettings(),
		JobDescription: "Keep the lights on.",
		CompanyName:    "Acme",
		HiringManager:  "Pat Smith",
	}
	return state
}

func TestGenerateCoverLetterCommitsOnce(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{chunks: []string{"Dear Pat Smith,", "\n\n", "I am excited.", "\n"}}
	s, st := newSession(t, gen, coverLetterState())

	var seen []string
	letter, err := s.GenerateCoverLetter(ctx, func(chunk string) {
		seen = append(seen, chunk)
		assert.Empty(t, s.Document().CoverLetter, "chunks stay out of the document")
	})
	require.NoError(t, err)

	assert.Equal(t, "Dear Pat Smith,\n\nI am excited.", letter)
	assert.Equal(t, gen.chunks, seen)
	assert.Equal(t, letter, s.Document().CoverLetter)
	assert.Equal(t, letter, savedState(t, st).Document.CoverLetter)
	assert.Equal(t, 3, s.HistoryLen(), "placeholder and final letter")
	assert.True(t, gen.streams[0].closed)

	require.Len(t, gen.coverReqs, 1)
	assert.Equal(t, "Acme", gen.coverReqs[0].CompanyName)
	assert.Equal(t, "Pat Smith", gen.coverReqs[0].HiringManager)
	assert.Equal(t, "Keep the lights on.", gen.coverReqs[0].JobDescription)

	_, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.Empty(t, s.Document().CoverLetter)

	_, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Old letter.", s.Document().CoverLetter)
}

func TestGenerateCoverLetterRollsBack(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		err    error
	}{
		{name: "stream error", chunks: []string{"Dear"}, err: errors.New("connection reset")},
		{name: "empty letter", chunks: []string{"  ", "\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{chunks: tt.chunks, streamErr: tt.err}
			s, st := newSession(t, gen, coverLetterState())

			letter, err := s.GenerateCoverLetter(context.Background(), nil)
			require.Error(t, err)

			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr))
			assert.Contains(t, genErr.Notice, "cover letter")
			assert.Empty(t, letter)
			assert.Equal(t, "Old letter.", s.Document().CoverLetter)
			assert.Equal(t, "Old letter.", savedState(t, st).Document.CoverLetter)
			assert.False(t, s.Busy())
		})
	}
}

func TestFailedCoverLetterLeavesHistoryUntouched(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		err    error
	}{
		{name: "fails before any chunk", err: errors.New("overloaded")},
		{name: "fails mid stream", chunks: []string{"Dear Pat,", " I am"}, err: errors.New("connection reset")},
		{name: "empty letter", chunks: []string{" "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			gen := &fakeGenerator{chunks: tt.chunks, streamErr: tt.err}
			s, _ := newSession(t, gen, coverLetterState())

			_, err := s.Edit(ctx, func(doc *resume.Document) {
				doc.Summary = "Edited summary."
			})
			require.NoError(t, err)
			_, err = s.Undo(ctx)
			require.NoError(t, err)

			length := s.HistoryLen()
			canUndo := s.CanUndo()
			canRedo := s.CanRedo()
			require.True(t, canRedo)

			_, err = s.GenerateCoverLetter(ctx, nil)
			require.Error(t, err)

			assert.Equal(t, length, s.HistoryLen())
			assert.Equal(t, canUndo, s.CanUndo())
			assert.Equal(t, canRedo, s.CanRedo())
			assert.Equal(t, "Old letter.", s.Document().CoverLetter)

			moved, err := s.Redo(ctx)
			require.NoError(t, err)
			assert.True(t, moved)
			assert.Equal(t, "Edited summary.", s.Document().Summary)
			assert.Equal(t, "Old letter.", s.Document().CoverLetter)
		})
	}
}

func TestGenerateCoverLetterMissingInput(t *testing.T) {
	state := coverLetterState()
	state.JobDescription = ""
	state.CompanyName = ""
	gen := &fakeGenerator{chunks: []string{"unused"}}
	s, _ := newSession(t, gen, state)

	_, err := s.GenerateCoverLetter(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Contains(t, err.Error(), "please add a job description and a company name")
	assert.Empty(t, gen.coverReqs)
	assert.Equal(t, "Old letter.", s.Document().CoverLetter)
}

func TestAnalysesLeaveHistoryAlone(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{chunks: []string{"ATS Score: 85%", "\n\nLooks good."}}
	s, _ := newSession(t, gen, coverLetterState())
	entries := s.HistoryLen()

	var seen int
	report, err := s.ATSCheck(ctx, func(string) { seen++ })
	require.NoError(t, err)
	assert.Equal(t, "ATS Score: 85%\n\nLooks good.", report)
	assert.Equal(t, 2, seen)

	report, err = s.JobMatch(ctx, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(report, "ATS Score"))

	assert.Equal(t, entries, s.HistoryLen())
	require.Len(t, gen.resumeTexts, 2)
	assert.True(t, strings.HasPrefix(gen.resumeTexts[0], "Name: Jane Doe"))
}

func TestJobMatchRequiresJobDescription(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{"unused"}}
	s, _ := newSession(t, gen, nil)

	_, err := s.JobMatch(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Empty(t, gen.resumeTexts)
}

func TestAnalysisFailure(t *testing.T) {
	gen := &fakeGenerator{streamErr: errors.New("overloaded")}
	s, _ := newSession(t, gen, nil)

	_, err := s.ATSCheck(context.Background(), nil)
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "An error occurred during the ATS check. Please try again.", genErr.Notice)
}

func TestInterviewPrep(t *testing.T) {
	ctx := context.Background()
	prep := resume.InterviewPrep{
		BehavioralQuestions: []resume.BehavioralQuestion{{Question: "Tell me about a conflict."}},
		TechnicalQuestions:  []string{"Explain consensus."},
	}
	gen := &fakeGenerator{prep: prep}
	s, st := newSession(t, gen, coverLetterState())

	got, err := s.InterviewPrep(ctx)
	require.NoError(t, err)
	assert.Equal(t, prep, got)

	kept, ok := s.InterviewPrepResult()
	require.True(t, ok)
	assert.Equal(t, prep, kept)

	saved := savedState(t, st)
	require.NotNil(t, saved.InterviewPrep)
	assert.Equal(t, []string{"Explain consensus."}, saved.InterviewPrep.TechnicalQuestions)
}

func TestInterviewPrepMissingInput(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	s, _ := newSession(t, gen, nil)

	_, err := s.Edit(ctx, func(doc *resume.Document) {
		doc.PersonalInfo.Name = ""
		doc.Experience = nil
	})
	require.NoError(t, err)

	_, err = s.InterviewPrep(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Contains(t, err.Error(), "please add your name, at least one work experience entry, and a job description")

	_, ok := s.InterviewPrepResult()
	assert.False(t, ok)
}

func TestSessionFieldsFlush(t *testing.T) {
	ctx := context.Background()
	s, st := newSession(t, nil, nil)

	require.NoError(t, s.SetJobDescription(ctx, "  Build things.  "))
	require.NoError(t, s.SetTargetJobRole(ctx, "SRE"))
	require.NoError(t, s.SetCompany(ctx, "Acme", "Pat", "1 Main St"))

	settings := resume.DefaultSettings()
	settings.Template = "modern"
	require.NoError(t, s.SetSettings(ctx, settings))

	bad := resume.DefaultSettings()
	bad.FontSize = "huge"
	assert.Error(t, s.SetSettings(ctx, bad))

	saved := savedState(t, st)
	assert.Equal(t, "Build things.", saved.JobDescription)
	assert.Equal(t, "SRE", saved.TargetJobRole)
	assert.Equal(t, "Acme", saved.CompanyName)
	assert.Equal(t, "Pat", saved.HiringManager)
	assert.Equal(t, "1 Main St", saved.CompanyAddress)
	assert.Equal(t, "modern", saved.Settings.Template)
	assert.Equal(t, store.StateVersion, saved.Version)
	assert.False(t, saved.SavedAt.IsZero())
}

func TestClearPreferences(t *testing.T) {
	state := blankSummaryState()
	state.LearnedPreferences = "- one"
	s, st := newSession(t, nil, state)

	require.NoError(t, s.ClearPreferences(context.Background()))
	assert.Equal(t, 0, s.Preferences().Len())
	assert.Empty(t, savedState(t, st).LearnedPreferences)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "A seasoned engineer."}
	state := blankSummaryState()
	state.LearnedPreferences = "- one"
	state.JobDescription = "JD"
	s, st := newSession(t, gen, state)

	_, err := s.SuggestSummary(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	assert.Equal(t, resume.Default().Summary, s.Document().Summary)
	assert.False(t, s.CanUndo())
	assert.Empty(t, s.PendingFields())
	assert.Equal(t, 0, s.Preferences().Len())
	assert.Empty(t, s.JobDescription())
	assert.Equal(t, "Staff Engineer", s.TargetJobRole())

	_, found, err := st.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCloseAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := New(ctx, Options{Store: store.NewFileStore(path), Logger: quietLogger()})
	require.NoError(t, err)

	_, err = s.Edit(ctx, func(doc *resume.Document) {
		doc.Summary = "Persisted."
	})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	reopened, err := New(ctx, Options{Store: store.NewFileStore(path), Logger: quietLogger()})
	require.NoError(t, err)
	defer func() {
		_ = reopened.Close(ctx)
	}()

	assert.Equal(t, "Persisted.", reopened.Document().Summary)
	assert.False(t, reopened.CanUndo(), "undo history is not persisted")
}
