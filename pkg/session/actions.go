package session

import (
	"context"
	"strings"

	"github.com/nikogura/resume-studio/pkg/feedback"
	"github.com/nikogura/resume-studio/pkg/history"
	"github.com/nikogura/resume-studio/pkg/llm"
	"github.com/nikogura/resume-studio/pkg/renderer"
	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/pkg/errors"
)

// begin claims the busy flag for an AI action.
func (s *Session) begin() (err error) {
	if s.generator == nil {
		err = ErrNoGenerator
		return err
	}
	if !s.acquire() {
		err = ErrBusy
		return err
	}
	return err
}

// SuggestSummary replaces the summary with one drafted for the target role.
func (s *Session) SuggestSummary(ctx context.Context) (summary string, err error) {
	err = s.begin()
	if err != nil {
		return summary, err
	}
	defer s.release()

	role := s.TargetJobRole()
	if role == "" {
		err = missingInput("a target job role")
		return summary, err
	}

	summary, err = s.generator.SuggestSummary(ctx, llm.SummaryRequest{
		TargetJobRole: role,
		Preferences:   s.preferences.String(),
	})
	if err != nil {
		err = generationFailed("while generating the summary", err)
		return summary, err
	}

	err = s.commitGenerated(ctx, resume.SummaryField(), summary)
	return summary, err
}

// SuggestExperience drafts responsibilities for an experience entry from its
// job title and company.
func (s *Session) SuggestExperience(ctx context.Context, entryID string) (bullets string, err error) {
	err = s.begin()
	if err != nil {
		return bullets, err
	}
	defer s.release()

	var entry resume.Experience
	entry, err = s.experience(entryID)
	if err != nil {
		return bullets, err
	}

	role := s.TargetJobRole()
	var missing []string
	if role == "" {
		missing = append(missing, "a target job role")
	}
	if strings.TrimSpace(entry.JobTitle) == "" {
		missing = append(missing, "a job title")
	}
	if len(missing) > 0 {
		err = missingInput(missing...)
		return bullets, err
	}

	bullets, err = s.generator.SuggestExperience(ctx, llm.ExperienceRequest{
		TargetJobRole: role,
		JobTitle:      entry.JobTitle,
		Company:       entry.Company,
		Preferences:   s.preferences.String(),
	})
	if err != nil {
		err = generationFailed("while generating the experience suggestion", err)
		return bullets, err
	}

	err = s.commitGenerated(ctx, resume.ExperienceField(entryID), bullets)
	return bullets, err
}

// EnhanceExperience rewrites the responsibilities the user wrote for an
// experience entry.
func (s *Session) EnhanceExperience(ctx context.Context, entryID string) (bullets string, err error) {
	err = s.begin()
	if err != nil {
		return bullets, err
	}
	defer s.release()

	var entry resume.Experience
	entry, err = s.experience(entryID)
	if err != nil {
		return bullets, err
	}

	var missing []string
	if strings.TrimSpace(entry.JobTitle) == "" {
		missing = append(missing, "a job title")
	}
	if strings.TrimSpace(entry.Responsibilities) == "" {
		missing = append(missing, "some responsibilities")
	}
	if len(missing) > 0 {
		err = missingInput(missing...)
		return bullets, err
	}

	bullets, err = s.generator.EnhanceExperience(ctx, llm.EnhanceRequest{
		JobTitle:    entry.JobTitle,
		Company:     entry.Company,
		Points:      entry.Responsibilities,
		Preferences: s.preferences.String(),
	})
	if err != nil {
		err = generationFailed("while enhancing the experience", err)
		return bullets, err
	}

	err = s.commitGenerated(ctx, resume.ExperienceField(entryID), bullets)
	return bullets, err
}

// FieldBlur runs the feedback loop for a field the user has finished
// editing. It is skipped while an AI action runs.
func (s *Session) FieldBlur(ctx context.Context, field resume.FieldID) (outcome feedback.Outcome) {
	if s.generator == nil || !s.acquire() {
		outcome = feedback.Skipped
		return outcome
	}
	defer s.release()

	doc := s.history.Current()
	text, present := doc.Field(field)
	outcome = s.loop.Learn(ctx, field, text, present)

	if outcome == feedback.Learned || outcome == feedback.Superseded {
		if err := s.flush(ctx); err != nil {
			s.logger.Warn("failed to save learned preference", "error", err)
		}
	}

	return outcome
}

// GenerateCoverLetter streams a cover letter into the document. onChunk sees
// every chunk as it arrives. The first chunk records an empty placeholder and
// the finished letter is recorded at the end, so one undo returns to the
// placeholder and two to the previous letter. A failed generation leaves the
// history exactly as it was.
func (s *Session) GenerateCoverLetter(ctx context.Context, onChunk func(chunk string)) (letter string, err error) {
	err = s.begin()
	if err != nil {
		return letter, err
	}
	defer s.release()

	doc := s.history.Current()
	name, hiringManager, address := s.Company()
	jobDescription := s.JobDescription()

	var missing []string
	if strings.TrimSpace(doc.PersonalInfo.Name) == "" {
		missing = append(missing, "your name")
	}
	if jobDescription == "" {
		missing = append(missing, "a job description")
	}
	if name == "" {
		missing = append(missing, "a company name")
	}
	if len(missing) > 0 {
		err = missingInput(missing...)
		return letter, err
	}

	checkpoint := s.history.Checkpoint()
	started := false
	var placeholderErr error

	stream := s.generator.CoverLetter(ctx, llm.CoverLetterRequest{
		Document:       doc,
		JobDescription: jobDescription,
		CompanyName:    name,
		HiringManager:  hiringManager,
		CompanyAddress: address,
	})

	letter, err = llm.Collect(stream, func(chunk string) {
		if !started {
			started = true
			placeholderErr = s.setCoverLetter(ctx, "")
		}
		if onChunk != nil {
			onChunk(chunk)
		}
	})
	letter = strings.TrimSpace(letter)
	if err == nil && letter == "" {
		err = errors.New("empty cover letter")
	}
	if err != nil {
		s.abandon(ctx, checkpoint)
		err = generationFailed("while generating the cover letter", err)
		letter = ""
		return letter, err
	}
	if placeholderErr != nil {
		s.logger.Warn("failed to save cover letter placeholder", "error", placeholderErr)
	}

	err = s.setCoverLetter(ctx, letter)
	return letter, err
}

// abandon returns the history to checkpoint and saves the restored document.
func (s *Session) abandon(ctx context.Context, checkpoint history.Checkpoint[resume.Document]) {
	if !s.history.Rollback(checkpoint) {
		return
	}
	if err := s.flush(ctx); err != nil {
		s.logger.Warn("failed to save restored document", "error", err)
	}
}

// ATSCheck returns an applicant tracking system report for the resume. The
// document is not changed.
func (s *Session) ATSCheck(ctx context.Context, onChunk func(chunk string)) (report string, err error) {
	err = s.begin()
	if err != nil {
		return report, err
	}
	defer s.release()

	doc := s.history.Current()
	report, err = llm.Collect(s.generator.ATSCheck(ctx, renderer.PlainText(doc)), onChunk)
	if err != nil {
		err = generationFailed("during the ATS check", err)
		return report, err
	}

	return report, err
}

// JobMatch returns an analysis of the resume against the job description.
// The document is not changed.
func (s *Session) JobMatch(ctx context.Context, onChunk func(chunk string)) (report string, err error) {
	err = s.begin()
	if err != nil {
		return report, err
	}
	defer s.release()

	jobDescription := s.JobDescription()
	if jobDescription == "" {
		err = missingInput("a job description")
		return report, err
	}

	doc := s.history.Current()
	report, err = llm.Collect(s.generator.JobMatch(ctx, renderer.PlainText(doc), jobDescription), onChunk)
	if err != nil {
		err = generationFailed("during the job match analysis", err)
		return report, err
	}

	return report, err
}

// InterviewPrep generates an interview prep kit and keeps it in the session.
func (s *Session) InterviewPrep(ctx context.Context) (prep resume.InterviewPrep, err error) {
	err = s.begin()
	if err != nil {
		return prep, err
	}
	defer s.release()

	doc := s.history.Current()
	jobDescription := s.JobDescription()

	var missing []string
	if strings.TrimSpace(doc.PersonalInfo.Name) == "" {
		missing = append(missing, "your name")
	}
	if len(doc.Experience) == 0 {
		missing = append(missing, "at least one work experience entry")
	}
	if jobDescription == "" {
		missing = append(missing, "a job description")
	}
	if len(missing) > 0 {
		err = missingInput(missing...)
		return prep, err
	}

	prep, err = s.generator.InterviewPrep(ctx, renderer.PlainText(doc), jobDescription)
	if err != nil {
		err = generationFailed("while generating the interview prep kit", err)
		return prep, err
	}

	s.mu.Lock()
	kept := prep
	s.interviewPrep = &kept
	s.mu.Unlock()

	err = s.flush(ctx)
	return prep, err
}

func (s *Session) experience(entryID string) (entry resume.Experience, err error) {
	doc := s.history.Current()
	index, found := doc.FindExperience(entryID)
	if !found {
		err = errors.Wrapf(resume.ErrNotFound, "experience %s", entryID)
		return entry, err
	}
	entry = doc.Experience[index]
	return entry, err
}

// commitGenerated writes AI text into field and records it as the field's
// baseline. The entry may have been removed while the generator ran.
func (s *Session) commitGenerated(ctx context.Context, field resume.FieldID, text string) (err error) {
	var setErr error
	s.history.CommitFunc(func(prev resume.Document) (next resume.Document) {
		setErr = prev.SetField(field, text)
		next = prev
		return next
	})
	if setErr != nil {
		err = errors.Wrap(setErr, "generated text no longer has a target")
		return err
	}

	s.tracker.RecordGenerated(field, text)
	s.logger.Debug("recorded generated text", "field", field.String())

	err = s.flush(ctx)
	return err
}

func (s *Session) setCoverLetter(ctx context.Context, letter string) (err error) {
	changed := s.history.CommitFunc(func(prev resume.Document) (next resume.Document) {
		prev.CoverLetter = letter
		next = prev
		return next
	})
	if !changed {
		return err
	}

	err = s.flush(ctx)
	return err
}
