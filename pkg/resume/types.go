package resume

// SchemaVersion is the current document schema version.
const SchemaVersion = 2

// Document represents the complete resume record.
type Document struct {
	SchemaVersion  int             `json:"schema_version"`
	PersonalInfo   PersonalInfo    `json:"personal_info"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	References     []Reference     `json:"references"`
	Certifications []Certification `json:"certifications"`
	CoverLetter    string          `json:"cover_letter"`
}

// PersonalInfo represents contact details.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website"`
	Address  string `json:"address"`
}

// Experience represents a single job.
type Experience struct {
	ID               string `json:"id"`
	JobTitle         string `json:"job_title"`
	Company          string `json:"company"`
	Location         string `json:"location"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Responsibilities string `json:"responsibilities"`
}

// Education represents a degree or course of study.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Location    string `json:"location"`
	GradDate    string `json:"grad_date"`
}

// Skill represents a single skill.
type Skill struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reference represents a professional reference.
type Reference struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// Certification represents a certification.
type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// InterviewPrep represents a generated interview preparation kit.
type InterviewPrep struct {
	BehavioralQuestions     []BehavioralQuestion `json:"behavioralQuestions"`
	TechnicalQuestions      []string             `json:"technicalQuestions"`
	QuestionsForInterviewer []string             `json:"questionsForInterviewer"`
}

// BehavioralQuestion pairs a question with a STAR answer.
type BehavioralQuestion struct {
	Question string     `json:"question"`
	Answer   STARAnswer `json:"answer"`
}

// STARAnswer is a Situation, Task, Action, Result answer.
type STARAnswer struct {
	Situation string `json:"situation"`
	Task      string `json:"task"`
	Action    string `json:"action"`
	Result    string `json:"result"`
}
