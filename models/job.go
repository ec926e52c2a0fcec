package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job status
const (
	JobActive = "active"
	JobClosed = "closed"
	JobDraft  = "draft"
)

// Application status. The same set is used for the job's applicant entry and the
// applicant's own view of it.
const (
	StatusPending     = "pending"
	StatusReviewed    = "reviewed"
	StatusShortlisted = "shortlisted"
	StatusInterview   = "interview"
	StatusRejected    = "rejected"
	StatusHired       = "hired"
)

var ApplicationStatuses = []string{
	StatusPending, StatusReviewed, StatusShortlisted, StatusInterview, StatusRejected, StatusHired,
}

var (
	JobTypes   = []string{"full-time", "part-time", "contract", "internship", "freelance"}
	WorkModes  = []string{"remote", "onsite", "hybrid"}
	Categories = []string{"technology", "marketing", "sales", "design", "finance", "hr", "operations", "other"}
)

const (
	DefaultCurrency      = "USD"
	DefaultMaxApplicants = 100
	DefaultExperienceMax = 10
)

type Salary struct {
	Min      float64 `json:"min" bson:"min" validate:"gte=0"`
	Max      float64 `json:"max" bson:"max" validate:"gte=0"`
	Currency string  `json:"currency" bson:"currency" validate:"required,len=3"`
}

type ExperienceRange struct {
	Min int `json:"min" bson:"min" validate:"gte=0"`
	Max int `json:"max" bson:"max" validate:"gte=0"`
}

type Job struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title" validate:"required,max=100"`
	Description string             `json:"description" bson:"description" validate:"required,max=5000"`
	Company     string             `json:"company" bson:"company" validate:"required,max=100"`
	Location    string             `json:"location" bson:"location" validate:"required"`
	JobType     string             `json:"jobType" bson:"jobType" validate:"required,oneof=full-time part-time contract internship freelance"`
	WorkMode    string             `json:"workMode" bson:"workMode" validate:"required,oneof=remote onsite hybrid"`
	Category    string             `json:"category" bson:"category" validate:"required,oneof=technology marketing sales design finance hr operations other"`

	Salary     Salary          `json:"salary" bson:"salary"`
	Experience ExperienceRange `json:"experience" bson:"experience"`

	Skills       []string `json:"skills" bson:"skills" validate:"min=1,dive,required"`
	Requirements []string `json:"requirements" bson:"requirements"`
	Benefits     []string `json:"benefits" bson:"benefits"`
	Tags         []string `json:"tags" bson:"tags"`
	IsUrgent     bool     `json:"isUrgent" bson:"isUrgent"`

	PostedBy   primitive.ObjectID `json:"postedBy" bson:"postedBy"`
	Applicants []Applicant        `json:"applicants,omitempty" bson:"applicants"`

	Status              string     `json:"status" bson:"status" validate:"required,oneof=active closed draft"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty" bson:"applicationDeadline,omitempty"`
	MaxApplicants       int        `json:"maxApplicants" bson:"maxApplicants" validate:"gte=1"`
	Views               int64      `json:"views" bson:"views"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Applicant struct {
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	AppliedAt   time.Time          `json:"appliedAt" bson:"appliedAt"`
	Status      string             `json:"status" bson:"status"`
	CoverLetter string             `json:"coverLetter,omitempty" bson:"coverLetter,omitempty"`
	Resume      string             `json:"resume,omitempty" bson:"resume,omitempty"`
	UpdatedAt   time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// NewJob returns a job carrying the schema defaults.
func NewJob() *Job {
	return &Job{
		Salary:        Salary{Currency: DefaultCurrency},
		Experience:    ExperienceRange{Min: 0, Max: DefaultExperienceMax},
		Skills:        []string{},
		Requirements:  []string{},
		Benefits:      []string{},
		Tags:          []string{},
		Applicants:    []Applicant{},
		Status:        JobActive,
		MaxApplicants: DefaultMaxApplicants,
	}
}

func (j *Job) ApplicantCount() int {
	return len(j.Applicants)
}

func (j *Job) IsExpired(now time.Time) bool {
	return j.ApplicationDeadline != nil && now.After(*j.ApplicationDeadline)
}

func (j *Job) IsFull() bool {
	return len(j.Applicants) >= j.MaxApplicants
}

func (j *Job) AcceptingApplications(now time.Time) bool {
	return j.Status == JobActive && !j.IsExpired(now) && !j.IsFull()
}

func (j *Job) IsOwnedBy(userID primitive.ObjectID) bool {
	return !userID.IsZero() && j.PostedBy == userID
}

func (j *Job) applicant(userID primitive.ObjectID) *Applicant {
	for i := range j.Applicants {
		if j.Applicants[i].UserID == userID {
			return &j.Applicants[i]
		}
	}
	return nil
}

func (j *Job) HasUserApplied(userID primitive.ObjectID) bool {
	return j.applicant(userID) != nil
}

// ApplicationStatus returns the status of userID's application, or "" if there is none.
func (j *Job) ApplicationStatus(userID primitive.ObjectID) string {
	if a := j.applicant(userID); a != nil {
		return a.Status
	}
	return ""
}

func (j *Job) Applicant(userID primitive.ObjectID) (Applicant, bool) {
	if a := j.applicant(userID); a != nil {
		return *a, true
	}
	return Applicant{}, false
}

func IsApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// JobDetail is the single-job payload.
type JobDetail struct {
	*Job
	Poster            *Poster `json:"poster,omitempty"`
	Applicants        []any   `json:"applicants"`
	ApplicantCount    int     `json:"applicantCount"`
	HasApplied        bool    `json:"hasApplied"`
	ApplicationStatus *string `json:"applicationStatus"`
}

// JobListing is a job in a list view with its poster's name and email.
type JobListing struct {
	Job
	Poster *Poster `json:"poster,omitempty"`
}

// RecruiterJob is a recruiter's own job with applicant profiles filled in.
type RecruiterJob struct {
	Job
	Applicants     []ApplicantView `json:"applicants"`
	ApplicantCount int             `json:"applicantCount"`
}

// RedactedApplicant is what non-owners see of an applicant entry.
type RedactedApplicant struct {
	AppliedAt time.Time `json:"appliedAt"`
	Status    string    `json:"status"`
}

// ApplicantView is an applicant entry with the applicant's profile filled in.
type ApplicantView struct {
	Applicant
	User *UserSummary `json:"user,omitempty"`
}

// ApplicationView is one row of an employee's applications list.
type ApplicationView struct {
	JobID       primitive.ObjectID `json:"jobId" bson:"jobId"`
	AppliedAt   time.Time          `json:"appliedAt" bson:"appliedAt"`
	Status      string             `json:"status" bson:"status"`
	CoverLetter string             `json:"coverLetter,omitempty" bson:"coverLetter,omitempty"`
	Resume      string             `json:"resume,omitempty" bson:"resume,omitempty"`
	Job         JobSummary         `json:"job" bson:"job"`
}

type JobSummary struct {
	Title    string             `json:"title" bson:"title"`
	Company  string             `json:"company" bson:"company"`
	Location string             `json:"location" bson:"location"`
	JobType  string             `json:"jobType" bson:"jobType"`
	WorkMode string             `json:"workMode" bson:"workMode"`
	Status   string             `json:"status" bson:"status"`
	Salary   Salary             `json:"salary" bson:"salary"`
	PostedBy primitive.ObjectID `json:"postedBy" bson:"postedBy"`
	Poster   *Poster            `json:"poster,omitempty" bson:"-"`
}

type Poster struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ApplicationStats counts applicants per status over a job's full applicant list.
type ApplicationStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Reviewed    int `json:"reviewed"`
	Shortlisted int `json:"shortlisted"`
	Interview   int `json:"interview"`
	Accepted    int `json:"accepted"`
	Hired       int `json:"hired"`
	Rejected    int `json:"rejected"`
}

func CountApplications(applicants []Applicant) ApplicationStats {
	s := ApplicationStats{Total: len(applicants)}
	for _, a := range applicants {
		switch a.Status {
		case StatusPending:
			s.Pending++
		case StatusReviewed:
			s.Reviewed++
		case StatusShortlisted:
			s.Shortlisted++
		case StatusInterview:
			s.Interview++
		case StatusHired:
			s.Hired++
			s.Accepted++
		case StatusRejected:
			s.Rejected++
		}
	}
	return s
}
