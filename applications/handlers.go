package applications

import (
	"net/http"

	"hirehub/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Apply handles POST /api/job/:id/apply
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in ApplyInput
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &in); err != nil {
			utils.RespondWithError(w, err)
			return
		}
	}
	if err := h.svc.Apply(r.Context(), utils.GetUserFromRequest(r), ps.ByName("id"), in); err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Application submitted successfully", nil)
}

// UpdateStatus handles PATCH /api/job/:id/applications/:applicantId/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithError(w, err)
		return
	}
	err := h.svc.UpdateStatus(r.Context(), utils.GetUserFromRequest(r), ps.ByName("id"), ps.ByName("applicantId"), body.Status)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Application status updated successfully", nil)
}

// MyApplications handles GET /api/job/employee/my-applications
func (h *Handler) MyApplications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := utils.ParsePageOptions(r)
	res, err := h.svc.MyApplications(r.Context(), utils.GetUserFromRequest(r), r.URL.Query().Get("status"), page)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":    true,
		"data":       res.Applications,
		"pagination": utils.Pagination(page.Page, page.Limit, res.Total, "totalApplications"),
	})
}

// JobApplications handles GET /api/job/:id/applications
func (h *Handler) JobApplications(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	page := utils.ParsePageOptions(r)
	res, err := h.svc.JobApplications(r.Context(), utils.GetUserFromRequest(r), ps.ByName("id"), r.URL.Query().Get("status"), page)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":    true,
		"data":       res,
		"pagination": utils.Pagination(page.Page, page.Limit, res.Total, "totalApplications"),
		"stats":      res.Stats,
	})
}

// Export handles GET /api/job/:id/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pdf, job, err := h.svc.ExportPDF(r.Context(), utils.GetUserFromRequest(r), ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=applications-"+job.ID.Hex()+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
