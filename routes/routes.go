package routes

import (
	"fmt"
	"net/http"

	"hirehub/applications"
	"hirehub/assist"
	"hirehub/auth"
	"hirehub/jobs"
	"hirehub/middleware"
	"hirehub/models"
	"hirehub/notify"
	"hirehub/ratelim"
	"hirehub/utils"

	"github.com/julienschmidt/httprouter"
)

// Deps carries the handlers and middleware the routes are built from.
type Deps struct {
	Auth         *middleware.Auth
	Limiter      *ratelim.RateLimiter
	Users        *auth.Handler
	Jobs         *jobs.Handler
	Applications *applications.Handler
	Assist       *assist.Handler
	Hub          *notify.Hub
	Origins      []string
	UploadDir    string
	UploadPrefix string
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewNotFoundError("Route not found"))
}

func New(d *Deps) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(notFound)
	router.GET("/health", Index)

	AddStaticRoutes(router, d)
	AddAuthRoutes(router, d)
	AddJobRoutes(router, d)
	AddAssistRoutes(router, d)
	AddNotificationRoutes(router, d)
	return router
}

func AddStaticRoutes(router *httprouter.Router, d *Deps) {
	if d.UploadPrefix == "" {
		return
	}
	router.ServeFiles(d.UploadPrefix+"/*filepath", http.Dir(d.UploadDir))
}

func AddAuthRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/auth/signup", d.Limiter.Limit(d.Users.Signup))
	router.POST("/api/auth/login", d.Limiter.Limit(d.Users.Login))
	router.POST("/api/auth/logout", d.Users.Logout)
	router.GET("/api/auth/me", d.Auth.Authenticate(d.Users.Me))
	router.PUT("/api/auth/:id", d.Auth.Authenticate(d.Users.UpdateUser))
	router.PUT("/api/auth/:id/avatar", d.Auth.Authenticate(d.Users.UploadAvatar))
}

func AddJobRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/job", d.Jobs.List)
	router.POST("/api/job", d.Auth.Authenticate(d.Jobs.Create))
	router.GET("/api/job/:id", d.Auth.OptionalAuth(d.Jobs.Get))
	router.PUT("/api/job/:id", d.Auth.Authenticate(d.Jobs.Update))
	router.DELETE("/api/job/:id", d.Auth.Authenticate(d.Jobs.Delete))
	router.GET("/api/job/:id/:sub", jobSubroutes(d))

	router.POST("/api/job/:id/apply", d.Auth.Authenticate(d.Applications.Apply))
	router.PATCH("/api/job/:id/applications/:applicantId/status", d.Auth.Authenticate(d.Applications.UpdateStatus))
}

// jobSubroutes serves every two-segment GET under /api/job. httprouter does
// not allow static segments next to the :id wildcard, so the collection
// routes are matched here by value.
func jobSubroutes(d *Deps) httprouter.Handle {
	myJobs := d.Auth.Authenticate(d.Jobs.MyJobs)
	myApplications := d.Auth.Authenticate(d.Applications.MyApplications)
	jobApplications := d.Auth.Authenticate(d.Applications.JobApplications)
	export := d.Auth.Authenticate(d.Applications.Export)

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, sub := ps.ByName("id"), ps.ByName("sub")
		switch {
		case id == "recruiter" && sub == "my-jobs":
			myJobs(w, r, ps)
		case id == "employee" && sub == "my-applications":
			myApplications(w, r, ps)
		case sub == "applications":
			jobApplications(w, r, ps)
		case sub == "export":
			export(w, r, ps)
		case sub == "qr":
			d.Jobs.ShareQR(w, r, ps)
		default:
			notFound(w, r)
		}
	}
}

func AddAssistRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/assist/resume-summary", d.Limiter.Limit(d.Auth.Authenticate(d.Assist.ResumeSummary())))
	router.POST("/api/assist/learning-path", d.Limiter.Limit(d.Auth.Authenticate(d.Assist.LearningPath())))
	router.POST("/api/assist/career-recommendation", d.Limiter.Limit(d.Auth.Authenticate(d.Assist.CareerRecommendation())))
	router.POST("/api/assist/translate", d.Limiter.Limit(d.Assist.Translate()))
}

func AddNotificationRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/notifications/ws", d.Auth.Authenticate(d.Hub.Handler(d.Origins)))
}
