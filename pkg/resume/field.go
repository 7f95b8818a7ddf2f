package resume

import (
	"strings"

	"github.com/pkg/errors"
)

// Section names a document section whose text can be AI generated.
type Section string

const (
	// SectionSummary is the professional summary.
	SectionSummary Section = "summary"
	// SectionExperience is the responsibilities text of one experience entry.
	SectionExperience Section = "experience"
)

// ErrUnknownField is returned for field identifiers that do not name a
// trackable field.
var ErrUnknownField = errors.New("unknown field")

// FieldID identifies a trackable field. Experience fields are keyed by the
// entry's stable ID, so reordering or deleting entries never makes a key
// point at a different entry.
type FieldID struct {
	Section Section
	EntryID string
}

// SummaryField returns the identifier of the summary field.
func SummaryField() (id FieldID) {
	id = FieldID{Section: SectionSummary}
	return id
}

// ExperienceField returns the identifier of an experience entry's responsibilities.
func ExperienceField(entryID string) (id FieldID) {
	id = FieldID{Section: SectionExperience, EntryID: entryID}
	return id
}

// String renders the identifier as "summary" or "experience:<id>".
func (f FieldID) String() (s string) {
	s = string(f.Section)
	if f.EntryID != "" {
		s += ":" + f.EntryID
	}
	return s
}

// ParseFieldID parses the String form of a FieldID.
func ParseFieldID(s string) (id FieldID, err error) {
	section, entryID, _ := strings.Cut(strings.TrimSpace(s), ":")
	id = FieldID{Section: Section(section), EntryID: entryID}

	err = id.Validate()
	if err != nil {
		id = FieldID{}
		return id, err
	}

	return id, err
}

// Validate checks that the identifier is well formed.
func (f FieldID) Validate() (err error) {
	switch f.Section {
	case SectionSummary:
		if f.EntryID != "" {
			err = errors.Wrapf(ErrUnknownField, "summary takes no entry ID: %s", f)
		}
	case SectionExperience:
		if f.EntryID == "" {
			err = errors.Wrap(ErrUnknownField, "experience field requires an entry ID")
		}
	default:
		err = errors.Wrapf(ErrUnknownField, "section %q", f.Section)
	}
	return err
}

// Field returns the current text of a trackable field. present is false when
// the field does not exist, e.g. the experience entry was deleted.
func (d *Document) Field(f FieldID) (text string, present bool) {
	switch f.Section {
	case SectionSummary:
		text = d.Summary
		present = true
	case SectionExperience:
		index, found := d.FindExperience(f.EntryID)
		if found {
			text = d.Experience[index].Responsibilities
			present = true
		}
	}
	return text, present
}

// SetField writes the text of a trackable field in place.
func (d *Document) SetField(f FieldID, text string) (err error) {
	err = f.Validate()
	if err != nil {
		return err
	}

	switch f.Section {
	case SectionSummary:
		d.Summary = text
	case SectionExperience:
		index, found := d.FindExperience(f.EntryID)
		if !found {
			err = errors.Wrapf(ErrNotFound, "experience %s", f.EntryID)
			return err
		}
		experience := make([]Experience, len(d.Experience))
		copy(experience, d.Experience)
		experience[index].Responsibilities = text
		d.Experience = experience
	}

	return err
}
