package applications

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"hirehub/db"
	"hirehub/globals"
	"hirehub/jobs"
	"hirehub/models"
	"hirehub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordedEvents) Emit(_ context.Context, evt models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordedEvents) last() models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	store  *db.MemoryStore
	svc    *Service
	jobs   *jobs.Service
	events *recordedEvents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := db.NewMemoryStore()
	events := &recordedEvents{}
	return &fixture{
		store:  store,
		svc:    NewService(store, events),
		jobs:   jobs.NewService(store, events, "http://localhost:5173"),
		events: events,
	}
}

func (f *fixture) user(t *testing.T, name, role string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Role: role, Skills: []string{"go"}}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) job(t *testing.T, owner *models.User, maxApplicants int) *models.Job {
	t.Helper()
	job, err := f.jobs.Create(context.Background(), owner, jobs.JobInput{
		Title:         ptr("Platform Engineer"),
		Description:   ptr("Keep the lights on"),
		Company:       ptr("Acme"),
		Location:      ptr("Remote"),
		JobType:       ptr("full-time"),
		WorkMode:      ptr("remote"),
		Category:      ptr("technology"),
		Skills:        []string{"go"},
		MaxApplicants: ptr(maxApplicants),
	})
	require.NoError(t, err)
	return job
}

func page() utils.PageOptions {
	return utils.PageOptions{Page: 1, Limit: 10}
}

func TestApplyRoleAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	employee := f.user(t, "emma", globals.RoleEmployee)
	job := f.job(t, recruiter, 5)

	err := f.svc.Apply(ctx, recruiter, job.ID.Hex(), ApplyInput{})
	assert.EqualError(t, err, "Only employees can apply for jobs")

	err = f.svc.Apply(ctx, nil, job.ID.Hex(), ApplyInput{})
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))

	err = f.svc.Apply(ctx, employee, job.ID.Hex(), ApplyInput{Resume: "not a url"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"Resume must be a valid URL"}, appErr.Errors)

	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'a'
	}
	err = f.svc.Apply(ctx, employee, job.ID.Hex(), ApplyInput{CoverLetter: string(long)})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"Cover letter cannot exceed 2000 characters"}, appErr.Errors)

	err = f.svc.Apply(ctx, employee, "65a000000000000000000000", ApplyInput{})
	assert.EqualError(t, err, "Job not found")
}

func TestApplyLimitsAndDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	job := f.job(t, recruiter, 2)

	a := f.user(t, "ann", globals.RoleEmployee)
	b := f.user(t, "ben", globals.RoleEmployee)
	c := f.user(t, "cat", globals.RoleEmployee)

	require.NoError(t, f.svc.Apply(ctx, a, job.ID.Hex(), ApplyInput{CoverLetter: "hi", Resume: "https://cv.example/ann.pdf"}))
	assert.Equal(t, models.EventApplicationCreated, f.events.last().Type)
	assert.Equal(t, recruiter.ID.Hex(), f.events.last().RecipientID)

	err := f.svc.Apply(ctx, a, job.ID.Hex(), ApplyInput{})
	assert.EqualError(t, err, "You have already applied for this job")

	require.NoError(t, f.svc.Apply(ctx, b, job.ID.Hex(), ApplyInput{}))
	err = f.svc.Apply(ctx, c, job.ID.Hex(), ApplyInput{})
	assert.EqualError(t, err, "Maximum number of applications reached")
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	stored, err := f.store.JobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Applicants, 2)
}

func TestApplyClosedAndExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	employee := f.user(t, "emma", globals.RoleEmployee)

	closed := f.job(t, recruiter, 5)
	_, err := f.jobs.Update(ctx, recruiter, closed.ID.Hex(), jobs.JobInput{Status: ptr(models.JobClosed)})
	require.NoError(t, err)
	err = f.svc.Apply(ctx, employee, closed.ID.Hex(), ApplyInput{})
	assert.EqualError(t, err, "This job is no longer accepting applications")

	expired := f.job(t, recruiter, 5)
	past := time.Now().Add(-time.Hour)
	expired.ApplicationDeadline = &past
	require.NoError(t, f.store.UpdateJob(ctx, expired))
	err = f.svc.Apply(ctx, employee, expired.ID.Hex(), ApplyInput{})
	assert.EqualError(t, err, "Application deadline has passed")
}

func TestApplyConcurrentNeverExceedsMax(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	job := f.job(t, recruiter, 3)

	applicants := make([]*models.User, 20)
	for i := range applicants {
		applicants[i] = f.user(t, fmt.Sprintf("employee%d", i), globals.RoleEmployee)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(applicants))
	for i, u := range applicants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.svc.Apply(ctx, u, job.ID.Hex(), ApplyInput{})
		}()
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		assert.EqualError(t, err, "Maximum number of applications reached")
	}
	assert.Equal(t, 3, admitted)

	stored, err := f.store.JobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Applicants, 3)
}

func TestApplySameUserConcurrently(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	employee := f.user(t, "emma", globals.RoleEmployee)
	job := f.job(t, recruiter, 50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.svc.Apply(ctx, employee, job.ID.Hex(), ApplyInput{})
		}()
	}
	wg.Wait()

	stored, err := f.store.JobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Applicants, 1)
}

func TestStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	employee := f.user(t, "emma", globals.RoleEmployee)
	job := f.job(t, recruiter, 5)
	require.NoError(t, f.svc.Apply(ctx, employee, job.ID.Hex(), ApplyInput{}))

	for _, status := range models.ApplicationStatuses {
		t.Run(status, func(t *testing.T) {
			require.NoError(t, f.svc.UpdateStatus(ctx, recruiter, job.ID.Hex(), employee.ID.Hex(), status))

			stored, err := f.store.JobByID(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, status, stored.ApplicationStatus(employee.ID))

			mine, err := f.svc.MyApplications(ctx, employee, "", page())
			require.NoError(t, err)
			require.Len(t, mine.Applications, 1)
			assert.Equal(t, status, mine.Applications[0].Status)

			evt := f.events.last()
			assert.Equal(t, models.EventApplicationStatus, evt.Type)
			assert.Equal(t, employee.ID.Hex(), evt.RecipientID)
			assert.Equal(t, status, evt.Status)
		})
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	other := f.user(t, "rob", globals.RoleRecruiter)
	employee := f.user(t, "emma", globals.RoleEmployee)
	job := f.job(t, recruiter, 5)
	require.NoError(t, f.svc.Apply(ctx, employee, job.ID.Hex(), ApplyInput{}))

	err := f.svc.UpdateStatus(ctx, other, job.ID.Hex(), employee.ID.Hex(), models.StatusHired)
	assert.EqualError(t, err, "You can only update applications for your own job posts")

	err = f.svc.UpdateStatus(ctx, recruiter, job.ID.Hex(), employee.ID.Hex(), "accepted")
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	err = f.svc.UpdateStatus(ctx, recruiter, job.ID.Hex(), other.ID.Hex(), models.StatusHired)
	assert.EqualError(t, err, "Application not found")

	err = f.svc.UpdateStatus(ctx, recruiter, "65a000000000000000000000", employee.ID.Hex(), models.StatusHired)
	assert.EqualError(t, err, "Job not found")
}

func TestMyApplicationsFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	employee := f.user(t, "emma", globals.RoleEmployee)

	base := time.Now()
	var ids []string
	for i := 0; i < 3; i++ {
		job := f.job(t, recruiter, 5)
		at := base.Add(time.Duration(i) * time.Minute)
		f.svc.now = func() time.Time { return at }
		require.NoError(t, f.svc.Apply(ctx, employee, job.ID.Hex(), ApplyInput{}))
		ids = append(ids, job.ID.Hex())
	}
	f.svc.now = time.Now
	require.NoError(t, f.svc.UpdateStatus(ctx, recruiter, ids[0], employee.ID.Hex(), models.StatusRejected))

	all, err := f.svc.MyApplications(ctx, employee, "", utils.PageOptions{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	require.Len(t, all.Applications, 2)
	assert.Equal(t, ids[2], all.Applications[0].JobID.Hex())
	require.NotNil(t, all.Applications[0].Job.Poster)
	assert.Equal(t, "rita", all.Applications[0].Job.Poster.Name)

	rejected, err := f.svc.MyApplications(ctx, employee, models.StatusRejected, page())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rejected.Total)
	assert.Equal(t, ids[0], rejected.Applications[0].JobID.Hex())

	_, err = f.svc.MyApplications(ctx, recruiter, "", page())
	assert.Equal(t, models.KindForbidden, models.KindOf(err))
}

func TestJobApplications(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	job := f.job(t, recruiter, 10)

	base := time.Now()
	var employees []*models.User
	for i := 0; i < 4; i++ {
		u := f.user(t, fmt.Sprintf("employee%d", i), globals.RoleEmployee)
		at := base.Add(time.Duration(i) * time.Minute)
		f.svc.now = func() time.Time { return at }
		require.NoError(t, f.svc.Apply(ctx, u, job.ID.Hex(), ApplyInput{}))
		employees = append(employees, u)
	}
	f.svc.now = time.Now
	require.NoError(t, f.svc.UpdateStatus(ctx, recruiter, job.ID.Hex(), employees[1].ID.Hex(), models.StatusInterview))
	require.NoError(t, f.svc.UpdateStatus(ctx, recruiter, job.ID.Hex(), employees[2].ID.Hex(), models.StatusHired))

	res, err := f.svc.JobApplications(ctx, recruiter, job.ID.Hex(), "", utils.PageOptions{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", res.JobTitle)
	assert.Equal(t, int64(4), res.Total)
	require.Len(t, res.Applications, 3)
	assert.Equal(t, employees[3].ID, res.Applications[0].UserID)
	assert.Equal(t, "employee3", res.Applications[0].User.Name)

	assert.Equal(t, 4, res.Stats.Total)
	assert.Equal(t, 2, res.Stats.Pending)
	assert.Equal(t, 1, res.Stats.Interview)
	assert.Equal(t, 1, res.Stats.Hired)
	assert.Equal(t, 1, res.Stats.Accepted)

	asc, err := f.svc.JobApplications(ctx, recruiter, job.ID.Hex(), models.StatusPending, utils.PageOptions{Page: 1, Limit: 10, SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), asc.Total)
	assert.Equal(t, employees[0].ID, asc.Applications[0].UserID)
	assert.Equal(t, 4, asc.Stats.Total)

	_, err = f.svc.JobApplications(ctx, employees[0], job.ID.Hex(), "", page())
	assert.EqualError(t, err, "You can only view applications for your own job posts")
}

func TestExportPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recruiter := f.user(t, "rita", globals.RoleRecruiter)
	employee := f.user(t, "emma", globals.RoleEmployee)
	job := f.job(t, recruiter, 5)
	require.NoError(t, f.svc.Apply(ctx, employee, job.ID.Hex(), ApplyInput{}))

	pdf, got, err := f.svc.ExportPDF(ctx, recruiter, job.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "%PDF", string(pdf[:4]))

	_, _, err = f.svc.ExportPDF(ctx, employee, job.ID.Hex())
	assert.Equal(t, models.KindForbidden, models.KindOf(err))
}
