package resume

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// legacyDocument is the unversioned (schema 1) layout written by earlier
// releases, which used camelCase keys and predates certifications and the
// github profile link.
type legacyDocument struct {
	PersonalInfo struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		LinkedIn string `json:"linkedin"`
		GitHub   string `json:"github"`
		Website  string `json:"website"`
		Address  string `json:"address"`
	} `json:"personalInfo"`
	Summary    string `json:"summary"`
	Experience []struct {
		ID               string `json:"id"`
		JobTitle         string `json:"jobTitle"`
		Company          string `json:"company"`
		Location         string `json:"location"`
		StartDate        string `json:"startDate"`
		EndDate          string `json:"endDate"`
		Responsibilities string `json:"responsibilities"`
	} `json:"experience"`
	Education []struct {
		ID          string `json:"id"`
		Institution string `json:"institution"`
		Degree      string `json:"degree"`
		Location    string `json:"location"`
		GradDate    string `json:"gradDate"`
	} `json:"education"`
	Skills         []Skill         `json:"skills"`
	References     []Reference     `json:"references"`
	Certifications []Certification `json:"certifications"`
}

// Upgrade parses a persisted document of any known schema version and
// returns it in the current, fully populated layout. An empty input yields
// the default document.
func Upgrade(raw []byte) (doc Document, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		doc = Default()
		return doc, err
	}

	var header struct {
		SchemaVersion int `json:"schema_version"`
	}
	err = json.Unmarshal(raw, &header)
	if err != nil {
		err = errors.Wrap(err, "failed to parse document")
		return doc, err
	}

	switch {
	case header.SchemaVersion == 0:
		doc, err = upgradeLegacy(raw)
		if err != nil {
			return doc, err
		}
	case header.SchemaVersion <= SchemaVersion:
		err = json.Unmarshal(raw, &doc)
		if err != nil {
			err = errors.Wrap(err, "failed to parse document")
			return doc, err
		}
	default:
		err = errors.Errorf("document schema version %d is newer than supported version %d", header.SchemaVersion, SchemaVersion)
		return doc, err
	}

	doc.SchemaVersion = SchemaVersion
	doc.Normalize()
	fillIDs(&doc)

	err = doc.Validate()
	if err != nil {
		err = errors.Wrap(err, "upgraded document is invalid")
		return doc, err
	}

	return doc, err
}

func upgradeLegacy(raw []byte) (doc Document, err error) {
	var legacy legacyDocument
	err = json.Unmarshal(raw, &legacy)
	if err != nil {
		err = errors.Wrap(err, "failed to parse legacy document")
		return doc, err
	}

	doc = Document{
		PersonalInfo:   PersonalInfo(legacy.PersonalInfo),
		Summary:        legacy.Summary,
		Skills:         legacy.Skills,
		References:     legacy.References,
		Certifications: legacy.Certifications,
	}

	for _, e := range legacy.Experience {
		doc.Experience = append(doc.Experience, Experience{
			ID:               e.ID,
			JobTitle:         e.JobTitle,
			Company:          e.Company,
			Location:         e.Location,
			StartDate:        e.StartDate,
			EndDate:          e.EndDate,
			Responsibilities: e.Responsibilities,
		})
	}

	for _, e := range legacy.Education {
		doc.Education = append(doc.Education, Education{
			ID:          e.ID,
			Institution: e.Institution,
			Degree:      e.Degree,
			Location:    e.Location,
			GradDate:    e.GradDate,
		})
	}

	return doc, err
}

// fillIDs assigns fresh IDs to entries that lack one or collide with an
// earlier entry.
func fillIDs(doc *Document) {
	seen := make(map[string]bool)
	assign := func(id *string) {
		if *id == "" || seen[*id] {
			*id = NewID()
		}
		seen[*id] = true
	}

	for i := range doc.Experience {
		assign(&doc.Experience[i].ID)
	}
	for i := range doc.Education {
		assign(&doc.Education[i].ID)
	}
	for i := range doc.Skills {
		assign(&doc.Skills[i].ID)
	}
	for i := range doc.References {
		assign(&doc.References[i].ID)
	}
	for i := range doc.Certifications {
		assign(&doc.Certifications[i].ID)
	}
}
