// Package applications runs the apply / review workflow on a job's applicant list.
package applications

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"hirehub/db"
	"hirehub/jobs"
	"hirehub/models"
	"hirehub/policy"
	"hirehub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	store  db.Store
	events jobs.Emitter
	now    func() time.Time
}

func NewService(store db.Store, events jobs.Emitter) *Service {
	return &Service{store: store, events: events, now: time.Now}
}

var (
	errNotAccepting      = models.NewConflictError("This job is no longer accepting applications")
	errDeadlinePassed    = models.NewConflictError("Application deadline has passed")
	errAlreadyApplied    = models.NewConflictError("You have already applied for this job")
	errMaxApplications   = models.NewConflictError("Maximum number of applications reached")
	errApplicationAbsent = models.NewNotFoundError("Application not found")
)

// ApplyInput is the body of POST /api/job/:id/apply.
type ApplyInput struct {
	CoverLetter string `json:"coverLetter" validate:"omitempty,max=2000"`
	Resume      string `json:"resume" validate:"omitempty,url"`
}

var applyMessages = map[string]string{
	"coverLetter.max": "Cover letter cannot exceed 2000 characters",
	"resume.url":      "Resume must be a valid URL",
}

// rejection reports why userID cannot apply to job right now, checked in the
// order clients see them.
func rejection(job *models.Job, userID primitive.ObjectID, now time.Time) error {
	switch {
	case job.Status != models.JobActive:
		return errNotAccepting
	case job.IsExpired(now):
		return errDeadlinePassed
	case job.HasUserApplied(userID):
		return errAlreadyApplied
	case job.IsFull():
		return errMaxApplications
	}
	return nil
}

func (s *Service) emit(ctx context.Context, evt models.Event) {
	if s.events == nil {
		return
	}
	evt.At = s.now()
	s.events.Emit(ctx, evt)
}

// Apply appends actor to the job's applicants. The store re-checks every
// admission rule inside one conditional update; when that update matches
// nothing the job is re-read to say which rule failed.
func (s *Service) Apply(ctx context.Context, actor *models.User, jobID string, in ApplyInput) error {
	if err := policy.Can(actor, policy.Apply, nil); err != nil {
		return err
	}
	in.CoverLetter = strings.TrimSpace(in.CoverLetter)
	in.Resume = strings.TrimSpace(in.Resume)
	if errs := utils.ValidateStructWith(in, applyMessages); len(errs) > 0 {
		return models.NewValidationError("Validation failed", errs...)
	}

	job, err := jobs.LoadJob(ctx, s.store, jobID)
	if err != nil {
		return err
	}
	now := s.now()
	if err := rejection(job, actor.ID, now); err != nil {
		return err
	}

	applicant := models.Applicant{
		UserID:      actor.ID,
		AppliedAt:   now,
		Status:      models.StatusPending,
		CoverLetter: in.CoverLetter,
		Resume:      in.Resume,
	}
	err = s.store.AddApplicant(ctx, job.ID, applicant, now)
	if errors.Is(err, db.ErrConditionFailed) {
		current, loadErr := jobs.LoadJob(ctx, s.store, jobID)
		if loadErr != nil {
			return loadErr
		}
		if rejected := rejection(current, actor.ID, now); rejected != nil {
			return rejected
		}
		return errNotAccepting
	}
	if err != nil {
		return err
	}

	s.emit(ctx, models.Event{
		Type:        models.EventApplicationCreated,
		JobID:       job.ID.Hex(),
		JobTitle:    job.Title,
		ActorID:     actor.ID.Hex(),
		RecipientID: job.PostedBy.Hex(),
		Status:      models.StatusPending,
	})
	return nil
}

// loadOwnedJob returns the job if actor may perform action on it.
func (s *Service) loadOwnedJob(ctx context.Context, actor *models.User, action policy.Action, jobID string) (*models.Job, error) {
	if actor == nil {
		return nil, policy.Can(nil, action, nil)
	}
	job, err := jobs.LoadJob(ctx, s.store, jobID)
	if err != nil {
		return nil, err
	}
	if err := policy.Can(actor, action, job); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateStatus sets the status of applicantID's entry on the job. The
// applicant's own view is read from the same entry.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, jobID, applicantID, status string) error {
	job, err := s.loadOwnedJob(ctx, actor, policy.UpdateApplication, jobID)
	if err != nil {
		return err
	}
	status = strings.TrimSpace(status)
	if !models.IsApplicationStatus(status) {
		return models.NewValidationError("Invalid application status",
			"status must be one of: "+strings.Join(models.ApplicationStatuses, ", "))
	}
	userID, err := db.ParseObjectID(applicantID)
	if err != nil || !job.HasUserApplied(userID) {
		return errApplicationAbsent
	}

	if err := s.store.SetApplicantStatus(ctx, job.ID, userID, status, s.now()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return errApplicationAbsent
		}
		return err
	}

	s.emit(ctx, models.Event{
		Type:        models.EventApplicationStatus,
		JobID:       job.ID.Hex(),
		JobTitle:    job.Title,
		ActorID:     actor.ID.Hex(),
		RecipientID: userID.Hex(),
		Status:      status,
	})
	return nil
}

type MyApplicationsResult struct {
	Applications []models.ApplicationView
	Total        int64
}

// MyApplications lists the jobs actor applied to, newest application first.
func (s *Service) MyApplications(ctx context.Context, actor *models.User, status string, page utils.PageOptions) (*MyApplicationsResult, error) {
	if err := policy.Can(actor, policy.ListOwnApplications, nil); err != nil {
		return nil, err
	}
	views, err := s.store.ApplicationsByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if status != "" {
		views = slices.DeleteFunc(views, func(v models.ApplicationView) bool {
			return v.Status != status
		})
	}
	return &MyApplicationsResult{
		Applications: utils.Paginate(views, page),
		Total:        int64(len(views)),
	}, nil
}

// JobApplicationsResult is the recruiter's view of one job's applicants.
type JobApplicationsResult struct {
	JobTitle     string                  `json:"jobTitle"`
	JobID        primitive.ObjectID      `json:"jobId"`
	Applications []models.ApplicantView  `json:"applications"`
	Total        int64                   `json:"-"`
	Stats        models.ApplicationStats `json:"-"`
}

func applicantTime(a models.Applicant, field string) time.Time {
	if field == "updatedAt" {
		return a.UpdatedAt
	}
	return a.AppliedAt
}

// JobApplications filters, sorts and pages the applicant list of a job the
// actor owns. Stats always cover the full list.
func (s *Service) JobApplications(ctx context.Context, actor *models.User, jobID, status string, page utils.PageOptions) (*JobApplicationsResult, error) {
	job, err := s.loadOwnedJob(ctx, actor, policy.ViewApplications, jobID)
	if err != nil {
		return nil, err
	}

	applicants := slices.Clone(job.Applicants)
	if status != "" {
		applicants = slices.DeleteFunc(applicants, func(a models.Applicant) bool {
			return a.Status != status
		})
	}
	desc := page.Desc()
	slices.SortStableFunc(applicants, func(a, b models.Applicant) int {
		c := applicantTime(a, page.SortBy).Compare(applicantTime(b, page.SortBy))
		if desc {
			return -c
		}
		return c
	})

	views, err := db.PopulateApplicants(ctx, s.store, utils.Paginate(applicants, page))
	if err != nil {
		return nil, err
	}
	return &JobApplicationsResult{
		JobTitle:     job.Title,
		JobID:        job.ID,
		Applications: views,
		Total:        int64(len(applicants)),
		Stats:        models.CountApplications(job.Applicants),
	}, nil
}
