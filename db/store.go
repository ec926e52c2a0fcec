package db

import (
	"context"
	"errors"
	"math"
	"time"

	"hirehub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("duplicate key")
	ErrConditionFailed = errors.New("update condition not met")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	// UpdateUserProfile persists the mutable profile fields and the password hash.
	UpdateUserProfile(ctx context.Context, u *models.User) error
}

type JobStore interface {
	InsertJob(ctx context.Context, j *models.Job) error
	JobByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	// IncrementViews bumps the view counter and returns the updated job.
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	FindJobs(ctx context.Context, q JobQuery) ([]models.Job, int64, error)
	// UpdateJob persists the editable fields of j. Owner, applicants and views are left alone.
	UpdateJob(ctx context.Context, j *models.Job) error
	DeleteJob(ctx context.Context, id primitive.ObjectID) error

	// AddApplicant appends a to the job only if the job is active, not past its
	// deadline, below maxApplicants and does not already hold a.UserID.
	// It returns ErrConditionFailed when any of those checks fails.
	AddApplicant(ctx context.Context, jobID primitive.ObjectID, a models.Applicant, now time.Time) error
	SetApplicantStatus(ctx context.Context, jobID, userID primitive.ObjectID, status string, now time.Time) error
	ApplicationsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ApplicationView, error)
	JobIDsByPoster(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Store is everything the services need from persistence.
type Store interface {
	UserStore
	JobStore
}

// JobQuery is a filtered, sorted, paginated job lookup.
type JobQuery struct {
	Filter         JobFilter
	Page           int
	Limit          int
	SortBy         string
	SortDesc       bool
	WithApplicants bool
}

// Skip saturates at math.MaxInt64 for pages past the end of the int64 range.
func (q JobQuery) Skip() int64 {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	page, limit := int64(q.Page-1), int64(q.Limit)
	if page > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return page * limit
}

// ParseObjectID returns ErrNotFound for malformed hex ids so callers can treat
// them like missing documents.
func ParseObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return id, nil
}
