package jobs

import (
	"net/http"
	"strconv"

	"hirehub/db"
	"hirehub/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func parseListQuery(r *http.Request) ListQuery {
	q := r.URL.Query()
	return ListQuery{
		Filter: db.JobFilter{
			Location:  q.Get("location"),
			JobType:   q.Get("jobType"),
			WorkMode:  q.Get("workMode"),
			Category:  q.Get("category"),
			Skills:    utils.SplitList(q.Get("skills")),
			MinSalary: utils.ParseFloatParam(q.Get("minSalary")),
			MaxSalary: utils.ParseFloatParam(q.Get("maxSalary")),
			Search:    q.Get("search"),
		},
		Page: utils.ParsePageOptions(r),
	}
}

// List handles GET /api/job
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := parseListQuery(r)
	res, err := h.svc.List(r.Context(), q)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":    true,
		"data":       res.Jobs,
		"pagination": utils.Pagination(q.Page.Page, q.Page.Limit, res.Total, "totalJobs"),
	})
}

// Get handles GET /api/job/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	detail, err := h.svc.Get(r.Context(), ps.ByName("id"), utils.GetUserFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "", detail)
}

// Create handles POST /api/job
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in JobInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithError(w, err)
		return
	}
	job, err := h.svc.Create(r.Context(), utils.GetUserFromRequest(r), in)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, "Job posted successfully", job)
}

// Update handles PUT /api/job/:id
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in JobInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithError(w, err)
		return
	}
	job, err := h.svc.Update(r.Context(), utils.GetUserFromRequest(r), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Job updated successfully", job)
}

// Delete handles DELETE /api/job/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.svc.Delete(r.Context(), utils.GetUserFromRequest(r), ps.ByName("id")); err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Job deleted successfully", nil)
}

// MyJobs handles GET /api/job/recruiter/my-jobs
func (h *Handler) MyJobs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := utils.ParsePageOptions(r)
	res, err := h.svc.MyJobs(r.Context(), utils.GetUserFromRequest(r), page)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":    true,
		"data":       res.Jobs,
		"pagination": utils.Pagination(page.Page, page.Limit, res.Total, "totalJobs"),
	})
}

// ShareQR handles GET /api/job/:id/qr?size=256
func (h *Handler) ShareQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	png, err := h.svc.ShareQR(r.Context(), ps.ByName("id"), size)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
