package resume

import (
	deep "github.com/brunoga/deep/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when an entry ID does not match any entry.
var ErrNotFound = errors.New("entry not found")

// Default returns the starter document shown on first launch.
func Default() (doc Document) {
	doc = Document{
		SchemaVersion: SchemaVersion,
		PersonalInfo: PersonalInfo{
			Name:     "Jane Doe",
			Email:    "jane.doe@email.com",
			Phone:    "123-456-7890",
			LinkedIn: "linkedin.com/in/janedoe",
			GitHub:   "github.com/janedoe",
			Website:  "janedoe.com",
			Address:  "City, State",
		},
		Summary: "A highly motivated and results-oriented professional with 5+ years of experience in project management and software development. Seeking to leverage proven skills in a challenging new role.",
		Experience: []Experience{
			{
				ID:               NewID(),
				JobTitle:         "Senior Project Manager",
				Company:          "Tech Solutions Inc.",
				Location:         "San Francisco, CA",
				StartDate:        "2020-01",
				EndDate:          "Present",
				Responsibilities: "- Led cross-functional teams to deliver projects on time.\n- Managed project budgets and resources.\n- Reported project status to stakeholders.",
			},
		},
		Education: []Education{
			{
				ID:          NewID(),
				Institution: "State University",
				Degree:      "B.S. in Computer Science",
				Location:    "Anytown, USA",
				GradDate:    "2019-05",
			},
		},
		Skills: []Skill{
			{ID: NewID(), Name: "JavaScript"},
			{ID: NewID(), Name: "React"},
			{ID: NewID(), Name: "Node.js"},
			{ID: NewID(), Name: "Agile Methodology"},
			{ID: NewID(), Name: "Project Management"},
		},
		References:     []Reference{},
		Certifications: []Certification{},
	}
	return doc
}

// NewID returns a fresh stable entry identifier.
func NewID() (id string) {
	id = uuid.NewString()
	return id
}

// Normalize replaces nil lists with empty ones so that two documents with the
// same content compare equal.
func (d *Document) Normalize() {
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.References == nil {
		d.References = []Reference{}
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
	if d.SchemaVersion == 0 {
		d.SchemaVersion = SchemaVersion
	}
}

// Equal reports whether two documents hold the same content.
func Equal(a, b Document) (equal bool) {
	a.Normalize()
	b.Normalize()
	equal = deep.Equal(a, b)
	return equal
}

// Validate checks that every list entry carries a unique, non-empty ID.
func (d *Document) Validate() (err error) {
	seen := make(map[string]bool)

	check := func(kind string, index int, id string) (checkErr error) {
		if id == "" {
			checkErr = errors.Errorf("%s at index %d missing ID", kind, index)
			return checkErr
		}
		if seen[id] {
			checkErr = errors.Errorf("duplicate ID %s in %s", id, kind)
			return checkErr
		}
		seen[id] = true
		return checkErr
	}

	for i, e := range d.Experience {
		err = check("experience", i, e.ID)
		if err != nil {
			return err
		}
	}
	for i, e := range d.Education {
		err = check("education", i, e.ID)
		if err != nil {
			return err
		}
	}
	for i, s := range d.Skills {
		err = check("skill", i, s.ID)
		if err != nil {
			return err
		}
	}
	for i, r := range d.References {
		err = check("reference", i, r.ID)
		if err != nil {
			return err
		}
	}
	for i, c := range d.Certifications {
		err = check("certification", i, c.ID)
		if err != nil {
			return err
		}
	}

	return err
}

// FindExperience returns the index of the experience entry with the given ID.
func (d *Document) FindExperience(id string) (index int, found bool) {
	for i, e := range d.Experience {
		if e.ID == id {
			index = i
			found = true
			return index, found
		}
	}
	index = -1
	return index, found
}

// AddExperience appends an empty experience entry and returns its ID.
func (d *Document) AddExperience() (id string) {
	id = NewID()
	d.Experience = append(d.Experience, Experience{ID: id})
	return id
}

// RemoveExperience deletes the experience entry with the given ID.
func (d *Document) RemoveExperience(id string) (err error) {
	index, found := d.FindExperience(id)
	if !found {
		err = errors.Wrapf(ErrNotFound, "experience %s", id)
		return err
	}

	d.Experience = append(d.Experience[:index:index], d.Experience[index+1:]...)
	return err
}

// MoveExperience shifts an experience entry by delta positions, clamped to the
// bounds of the list.
func (d *Document) MoveExperience(id string, delta int) (err error) {
	index, found := d.FindExperience(id)
	if !found {
		err = errors.Wrapf(ErrNotFound, "experience %s", id)
		return err
	}

	target := index + delta
	if target < 0 {
		target = 0
	}
	if target > len(d.Experience)-1 {
		target = len(d.Experience) - 1
	}
	if target == index {
		return err
	}

	entry := d.Experience[index]
	rest := append(d.Experience[:index:index], d.Experience[index+1:]...)
	moved := make([]Experience, 0, len(d.Experience))
	moved = append(moved, rest[:target]...)
	moved = append(moved, entry)
	moved = append(moved, rest[target:]...)
	d.Experience = moved

	return err
}

// ExperienceIDs returns the IDs of all experience entries in order.
func (d *Document) ExperienceIDs() (ids []string) {
	ids = make([]string, 0, len(d.Experience))
	for _, e := range d.Experience {
		ids = append(ids, e.ID)
	}
	return ids
}
