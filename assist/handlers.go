package assist

import (
	"context"
	"net/http"

	"hirehub/models"
	"hirehub/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// serve decodes and validates a request body of type In, then writes the result of fn.
func serve[In any, Out any](svc *Service, fn func(context.Context, In) (Out, error)) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if !svc.Enabled() {
			utils.RespondWithError(w, errNotConfigured)
			return
		}
		var in In
		if err := utils.DecodeJSON(r, &in); err != nil {
			utils.RespondWithError(w, err)
			return
		}
		if errs := utils.ValidateStruct(in); len(errs) > 0 {
			utils.RespondWithError(w, models.NewValidationError("Validation failed", errs...))
			return
		}
		out, err := fn(r.Context(), in)
		if err != nil {
			utils.RespondWithError(w, err)
			return
		}
		utils.RespondSuccess(w, http.StatusOK, "", out)
	}
}

// ResumeSummary handles POST /api/assist/resume-summary
func (h *Handler) ResumeSummary() httprouter.Handle {
	return serve(h.svc, h.svc.SummarizeResume)
}

// LearningPath handles POST /api/assist/learning-path
func (h *Handler) LearningPath() httprouter.Handle {
	return serve(h.svc, h.svc.LearningPath)
}

// CareerRecommendation handles POST /api/assist/career-recommendation
func (h *Handler) CareerRecommendation() httprouter.Handle {
	return serve(h.svc, h.svc.RecommendCareers)
}

// Translate handles POST /api/assist/translate
func (h *Handler) Translate() httprouter.Handle {
	return serve(h.svc, h.svc.Translate)
}
