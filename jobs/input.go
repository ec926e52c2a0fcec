package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hirehub/models"
	"hirehub/utils"
)

// Date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

type SalaryInput struct {
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Currency *string  `json:"currency"`
}

type ExperienceInput struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// JobInput is a create or update request. Nil fields are left unchanged.
// postedBy, applicants and views are not part of it, so clients cannot set them.
type JobInput struct {
	Title               *string          `json:"title"`
	Description         *string          `json:"description"`
	Company             *string          `json:"company"`
	Location            *string          `json:"location"`
	JobType             *string          `json:"jobType"`
	WorkMode            *string          `json:"workMode"`
	Category            *string          `json:"category"`
	Salary              *SalaryInput     `json:"salary"`
	Experience          *ExperienceInput `json:"experience"`
	Skills              []string         `json:"skills"`
	Requirements        []string         `json:"requirements"`
	Benefits            []string         `json:"benefits"`
	Tags                []string         `json:"tags"`
	IsUrgent            *bool            `json:"isUrgent"`
	Status              *string          `json:"status"`
	ApplicationDeadline *Date            `json:"applicationDeadline"`
	MaxApplicants       *int             `json:"maxApplicants"`
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// ApplyTo merges the supplied fields into j.
func (in JobInput) ApplyTo(j *models.Job) {
	setTrimmed(&j.Title, in.Title)
	setTrimmed(&j.Description, in.Description)
	setTrimmed(&j.Company, in.Company)
	setTrimmed(&j.Location, in.Location)
	setTrimmed(&j.JobType, in.JobType)
	setTrimmed(&j.WorkMode, in.WorkMode)
	setTrimmed(&j.Category, in.Category)
	setTrimmed(&j.Status, in.Status)

	if in.Salary != nil {
		if in.Salary.Min != nil {
			j.Salary.Min = *in.Salary.Min
		}
		if in.Salary.Max != nil {
			j.Salary.Max = *in.Salary.Max
		}
		if in.Salary.Currency != nil {
			j.Salary.Currency = strings.ToUpper(strings.TrimSpace(*in.Salary.Currency))
		}
	}
	if in.Experience != nil {
		if in.Experience.Min != nil {
			j.Experience.Min = *in.Experience.Min
		}
		if in.Experience.Max != nil {
			j.Experience.Max = *in.Experience.Max
		}
	}
	if in.Skills != nil {
		j.Skills = cleanList(in.Skills)
	}
	if in.Requirements != nil {
		j.Requirements = cleanList(in.Requirements)
	}
	if in.Benefits != nil {
		j.Benefits = cleanList(in.Benefits)
	}
	if in.Tags != nil {
		j.Tags = cleanList(in.Tags)
	}
	if in.IsUrgent != nil {
		j.IsUrgent = *in.IsUrgent
	}
	if in.ApplicationDeadline != nil {
		d := in.ApplicationDeadline.Time
		j.ApplicationDeadline = &d
	}
	if in.MaxApplicants != nil {
		j.MaxApplicants = *in.MaxApplicants
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var jobMessages = map[string]string{
	"title.required":       "Job title is required",
	"title.max":            "Job title cannot exceed 100 characters",
	"description.required": "Job description is required",
	"description.max":      "Job description cannot exceed 5000 characters",
	"company.required":     "Company name is required",
	"company.max":          "Company name cannot exceed 100 characters",
	"location.required":    "Location is required",
	"jobType.required":     "Job type is required",
	"jobType.oneof":        "Invalid job type",
	"workMode.required":    "Work mode is required",
	"workMode.oneof":       "Invalid work mode",
	"category.required":    "Category is required",
	"category.oneof":       "Invalid category",
	"status.oneof":         "Invalid job status",
	"salary.min.gte":       "Valid minimum salary is required",
	"salary.max.gte":       "Valid maximum salary is required",
	"experience.min.gte":   "Valid minimum experience is required",
	"experience.max.gte":   "Valid maximum experience is required",
	"skills.min":           "At least one skill is required",
	"maxApplicants.gte":    "Maximum applicants must be a positive number",
}

// Validate checks the merged job. The deadline must be in the future only when
// this request sets it, so editing an expired job does not fail on the old date.
func Validate(j *models.Job, in JobInput, now time.Time) []string {
	errs := utils.ValidateStructWith(j, jobMessages)
	if j.Salary.Min > j.Salary.Max {
		errs = append(errs, "Minimum salary cannot be greater than maximum salary")
	}
	if j.Experience.Min > j.Experience.Max {
		errs = append(errs, "Minimum experience cannot be greater than maximum experience")
	}
	if in.ApplicationDeadline != nil && !in.ApplicationDeadline.After(now) {
		errs = append(errs, "Application deadline must be in the future")
	}
	return errs
}
