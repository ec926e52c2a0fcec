package auth

import (
	"io"
	"log"
	"net/http"

	"hirehub/middleware"
	"hirehub/models"
	"hirehub/utils"

	"github.com/julienschmidt/httprouter"
)

const maxUpdateBody = 1 << 20

// Handler exposes the auth service over HTTP.
type Handler struct {
	svc  *Service
	auth *middleware.Auth
}

func NewHandler(svc *Service, auth *middleware.Auth) *Handler {
	return &Handler{svc: svc, auth: auth}
}

// Signup handles POST /api/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in SignupInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithError(w, err)
		return
	}
	sess, err := h.svc.Signup(r.Context(), in)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	h.auth.Cookie.Set(w, sess.Token, h.auth.Tokens.TTL())
	utils.RespondWithJSON(w, http.StatusCreated, sess.User)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in LoginInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithError(w, err)
		return
	}
	sess, err := h.svc.Login(r.Context(), in)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	h.auth.Cookie.Set(w, sess.Token, h.auth.Tokens.TTL())
	utils.RespondWithJSON(w, http.StatusOK, sess.User)
}

// Logout handles POST /api/auth/logout. It always succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if claims, err := h.auth.Claims(r); err == nil {
		if err := h.svc.Logout(r.Context(), claims); err != nil {
			log.Printf("revoke session %s: %v", claims.ID, err)
		}
	}
	h.auth.Cookie.Clear(w)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Logout Successful"})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	profile, err := h.svc.Me(r.Context(), utils.GetUserFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": profile})
}

// UpdateUser handles PUT /api/auth/:id
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateBody))
	if err != nil {
		utils.RespondWithError(w, models.NewValidationError("Invalid request body"))
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), utils.GetUserFromRequest(r), ps.ByName("id"), raw)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// UploadAvatar handles PUT /api/auth/:id/avatar (multipart field "avatar")
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, 6<<20)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.RespondWithError(w, models.NewValidationError("avatar file is required"))
		return
	}
	defer file.Close()

	user, err := h.svc.UploadAvatar(r.Context(), utils.GetUserFromRequest(r), ps.ByName("id"), file, header.Filename)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}
