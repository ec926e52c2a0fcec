package jobs

import (
	"context"
	"errors"
	"time"

	"hirehub/db"
	"hirehub/models"
	"hirehub/policy"
	"hirehub/utils"

	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Emitter interface {
	Emit(ctx context.Context, evt models.Event)
}

type Service struct {
	store     db.Store
	events    Emitter
	publicURL string
	now       func() time.Time
}

func NewService(store db.Store, events Emitter, publicURL string) *Service {
	return &Service{store: store, events: events, publicURL: publicURL, now: time.Now}
}

var errJobNotFound = models.NewNotFoundError("Job not found")

// LoadJob fetches a job by hex id. Malformed ids are reported as not found.
func LoadJob(ctx context.Context, store db.JobStore, id string) (*models.Job, error) {
	oid, err := db.ParseObjectID(id)
	if err != nil {
		return nil, errJobNotFound
	}
	job, err := store.JobByID(ctx, oid)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errJobNotFound
	}
	return job, err
}

func (s *Service) emit(ctx context.Context, evtType string, job *models.Job, actor *models.User) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, models.Event{
		Type:     evtType,
		JobID:    job.ID.Hex(),
		JobTitle: job.Title,
		ActorID:  actor.ID.Hex(),
		At:       s.now(),
	})
}

func validationError(errs []string) error {
	return models.NewValidationError("Validation failed", errs...)
}

func (s *Service) Create(ctx context.Context, actor *models.User, in JobInput) (*models.Job, error) {
	if err := policy.Can(actor, policy.CreateJob, nil); err != nil {
		return nil, err
	}

	now := s.now()
	job := models.NewJob()
	in.ApplyTo(job)
	if errs := Validate(job, in, now); len(errs) > 0 {
		return nil, validationError(errs)
	}

	job.PostedBy = actor.ID
	job.Applicants = []models.Applicant{}
	job.Views = 0
	job.CreatedAt = now
	job.UpdatedAt = now
	if err := s.store.InsertJob(ctx, job); err != nil {
		return nil, err
	}
	s.emit(ctx, models.EventJobCreated, job, actor)
	return job, nil
}

// ListQuery is a public job search.
type ListQuery struct {
	Filter db.JobFilter
	Page   utils.PageOptions
}

type ListResult struct {
	Jobs  []models.JobListing
	Total int64
}

// List returns active jobs only, without applicants.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	q.Filter.Status = models.JobActive
	q.Filter.PostedBy = primitive.NilObjectID

	jobs, total, err := s.store.FindJobs(ctx, db.JobQuery{
		Filter:   q.Filter,
		Page:     q.Page.Page,
		Limit:    q.Page.Limit,
		SortBy:   q.Page.SortBy,
		SortDesc: q.Page.Desc(),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.PostedBy)
	}
	posters, err := db.Posters(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	listings := make([]models.JobListing, 0, len(jobs))
	for _, j := range jobs {
		j.Applicants = nil
		listings = append(listings, models.JobListing{Job: j, Poster: posters[j.PostedBy]})
	}
	return &ListResult{Jobs: listings, Total: total}, nil
}

// Get counts a view and returns the post-increment job. Applicants are
// redacted to {appliedAt, status} unless viewer owns the job.
func (s *Service) Get(ctx context.Context, id string, viewer *models.User) (*models.JobDetail, error) {
	oid, err := db.ParseObjectID(id)
	if err != nil {
		return nil, errJobNotFound
	}
	job, err := s.store.IncrementViews(ctx, oid)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errJobNotFound
	}
	if err != nil {
		return nil, err
	}

	detail := &models.JobDetail{Job: job, Applicants: []any{}, ApplicantCount: job.ApplicantCount()}
	if viewer != nil {
		detail.HasApplied = job.HasUserApplied(viewer.ID)
		if status := job.ApplicationStatus(viewer.ID); status != "" {
			detail.ApplicationStatus = &status
		}
	}

	if viewer != nil && job.IsOwnedBy(viewer.ID) {
		views, err := db.PopulateApplicants(ctx, s.store, job.Applicants)
		if err != nil {
			return nil, err
		}
		for _, v := range views {
			detail.Applicants = append(detail.Applicants, v)
		}
	} else {
		for _, a := range job.Applicants {
			detail.Applicants = append(detail.Applicants, models.RedactedApplicant{AppliedAt: a.AppliedAt, Status: a.Status})
		}
	}

	posters, err := db.Posters(ctx, s.store, []primitive.ObjectID{job.PostedBy})
	if err != nil {
		return nil, err
	}
	detail.Poster = posters[job.PostedBy]
	return detail, nil
}

func (s *Service) Update(ctx context.Context, actor *models.User, id string, in JobInput) (*models.Job, error) {
	job, err := LoadJob(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Can(actor, policy.UpdateJob, job); err != nil {
		return nil, err
	}

	now := s.now()
	in.ApplyTo(job)
	if errs := Validate(job, in, now); len(errs) > 0 {
		return nil, validationError(errs)
	}
	job.UpdatedAt = now
	if err := s.store.UpdateJob(ctx, job); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errJobNotFound
		}
		return nil, err
	}
	return job, nil
}

func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	job, err := LoadJob(ctx, s.store, id)
	if err != nil {
		return err
	}
	if err := policy.Can(actor, policy.DeleteJob, job); err != nil {
		return err
	}
	if err := s.store.DeleteJob(ctx, job.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return errJobNotFound
		}
		return err
	}
	s.emit(ctx, models.EventJobDeleted, job, actor)
	return nil
}

type MyJobsResult struct {
	Jobs  []models.RecruiterJob
	Total int64
}

// MyJobs lists the recruiter's own jobs, newest first, with applicant profiles.
func (s *Service) MyJobs(ctx context.Context, actor *models.User, page utils.PageOptions) (*MyJobsResult, error) {
	if err := policy.Can(actor, policy.ListOwnJobs, nil); err != nil {
		return nil, err
	}
	jobs, total, err := s.store.FindJobs(ctx, db.JobQuery{
		Filter:         db.JobFilter{PostedBy: actor.ID},
		Page:           page.Page,
		Limit:          page.Limit,
		SortBy:         db.DefaultJobSort,
		SortDesc:       true,
		WithApplicants: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.RecruiterJob, 0, len(jobs))
	for _, j := range jobs {
		views, err := db.PopulateApplicants(ctx, s.store, j.Applicants)
		if err != nil {
			return nil, err
		}
		count := j.ApplicantCount()
		j.Applicants = nil
		out = append(out, models.RecruiterJob{Job: j, Applicants: views, ApplicantCount: count})
	}
	return &MyJobsResult{Jobs: out, Total: total}, nil
}

// ShareURL is the public link a job's QR code points to.
func (s *Service) ShareURL(job *models.Job) string {
	return s.publicURL + "/jobs/" + job.ID.Hex()
}

// ShareQR renders a PNG QR code linking to the job's public page.
func (s *Service) ShareQR(ctx context.Context, id string, size int) ([]byte, error) {
	job, err := LoadJob(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if size < 64 || size > 1024 {
		size = 256
	}
	png, err := qrcode.Encode(s.ShareURL(job), qrcode.Medium, size)
	if err != nil {
		return nil, models.NewInternalError("encode qr code", err)
	}
	return png, nil
}
