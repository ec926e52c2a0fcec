package db

import (
	"cmp"
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"hirehub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is a mutex-guarded Store used by tests and STORE_DRIVER=memory.
// Every read hands out copies so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
	jobs  map[primitive.ObjectID]models.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[primitive.ObjectID]models.User),
		jobs:  make(map[primitive.ObjectID]models.Job),
	}
}

func cloneUser(u models.User) *models.User {
	u.Skills = slices.Clone(u.Skills)
	u.Expertise = slices.Clone(u.Expertise)
	u.MentorshipSessions = slices.Clone(u.MentorshipSessions)
	return &u
}

func cloneJob(j models.Job) models.Job {
	j.Skills = slices.Clone(j.Skills)
	j.Requirements = slices.Clone(j.Requirements)
	j.Benefits = slices.Clone(j.Benefits)
	j.Tags = slices.Clone(j.Tags)
	j.Applicants = slices.Clone(j.Applicants)
	if j.ApplicationDeadline != nil {
		d := *j.ApplicationDeadline
		j.ApplicationDeadline = &d
	}
	return j
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	s.users[u.ID] = *cloneUser(*u)
	return nil
}

func (s *MemoryStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UsersByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateUserProfile(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now()
	// email, role and createdAt are immutable
	u.Email = existing.Email
	u.Role = existing.Role
	u.CreatedAt = existing.CreatedAt
	s.users[u.ID] = *cloneUser(*u)
	return nil
}

func (s *MemoryStore) InsertJob(_ context.Context, j *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if j.Applicants == nil {
		j.Applicants = []models.Applicant{}
	}
	s.jobs[j.ID] = cloneJob(*j)
	return nil
}

func (s *MemoryStore) JobByID(_ context.Context, id primitive.ObjectID) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneJob(j)
	return &c, nil
}

func (s *MemoryStore) IncrementViews(_ context.Context, id primitive.ObjectID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	j.Views++
	s.jobs[id] = j
	c := cloneJob(j)
	return &c, nil
}

func (s *MemoryStore) FindJobs(_ context.Context, q JobQuery) ([]models.Job, int64, error) {
	s.mu.RLock()
	matched := make([]models.Job, 0)
	for _, j := range s.jobs {
		if q.Filter.Match(&j) {
			matched = append(matched, cloneJob(j))
		}
	}
	s.mu.RUnlock()

	field := SortField(q.SortBy)
	sort.SliceStable(matched, func(a, b int) bool {
		c := compareJobs(&matched[a], &matched[b], field)
		if c == 0 {
			c = strings.Compare(matched[a].ID.Hex(), matched[b].ID.Hex())
		}
		if q.SortDesc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))
	start := min(int(q.Skip()), len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}
	page := matched[start:end]
	if !q.WithApplicants {
		for i := range page {
			page[i].Applicants = nil
		}
	}
	return page, total, nil
}

func compareJobs(a, b *models.Job, field string) int {
	switch field {
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "company":
		return strings.Compare(a.Company, b.Company)
	case "salary.min":
		return cmp.Compare(a.Salary.Min, b.Salary.Min)
	case "salary.max":
		return cmp.Compare(a.Salary.Max, b.Salary.Max)
	case "views":
		return cmp.Compare(a.Views, b.Views)
	case "applicationDeadline":
		return compareDeadline(a.ApplicationDeadline, b.ApplicationDeadline)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// nil deadlines sort first, like missing fields in mongo.
func compareDeadline(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func (s *MemoryStore) UpdateJob(_ context.Context, j *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.jobs[j.ID]
	if !ok {
		return ErrNotFound
	}
	updated := cloneJob(*j)
	updated.PostedBy = existing.PostedBy
	updated.Applicants = existing.Applicants
	updated.Views = existing.Views
	updated.CreatedAt = existing.CreatedAt
	s.jobs[j.ID] = updated
	return nil
}

func (s *MemoryStore) DeleteJob(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *MemoryStore) AddApplicant(_ context.Context, jobID primitive.ObjectID, a models.Applicant, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return ErrConditionFailed
	}
	if j.HasUserApplied(a.UserID) || !j.AcceptingApplications(now) {
		return ErrConditionFailed
	}
	j.Applicants = append(slices.Clone(j.Applicants), a)
	j.UpdatedAt = now
	s.jobs[jobID] = j
	return nil
}

func (s *MemoryStore) SetApplicantStatus(_ context.Context, jobID, userID primitive.ObjectID, status string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	j.Applicants = slices.Clone(j.Applicants)
	for i := range j.Applicants {
		if j.Applicants[i].UserID == userID {
			j.Applicants[i].Status = status
			j.Applicants[i].UpdatedAt = now
			j.UpdatedAt = now
			s.jobs[jobID] = j
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ApplicationsByUser(_ context.Context, userID primitive.ObjectID) ([]models.ApplicationView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := []models.ApplicationView{}
	for _, j := range s.jobs {
		a, ok := j.Applicant(userID)
		if !ok {
			continue
		}
		v := models.ApplicationView{
			JobID:       j.ID,
			AppliedAt:   a.AppliedAt,
			Status:      a.Status,
			CoverLetter: a.CoverLetter,
			Resume:      a.Resume,
			Job: models.JobSummary{
				Title:    j.Title,
				Company:  j.Company,
				Location: j.Location,
				JobType:  j.JobType,
				WorkMode: j.WorkMode,
				Status:   j.Status,
				Salary:   j.Salary,
				PostedBy: j.PostedBy,
			},
		}
		if u, ok := s.users[j.PostedBy]; ok {
			v.Job.Poster = &models.Poster{Name: u.Name, Email: u.Email}
		}
		views = append(views, v)
	}
	sort.Slice(views, func(a, b int) bool {
		return views[a].AppliedAt.After(views[b].AppliedAt)
	})
	return views, nil
}

func (s *MemoryStore) JobIDsByPoster(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []models.Job
	for _, j := range s.jobs {
		if j.PostedBy == userID {
			owned = append(owned, j)
		}
	}
	sort.Slice(owned, func(a, b int) bool {
		return owned[a].CreatedAt.After(owned[b].CreatedAt)
	})
	ids := make([]primitive.ObjectID, 0, len(owned))
	for _, j := range owned {
		ids = append(ids, j.ID)
	}
	return ids, nil
}
