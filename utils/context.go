package utils

import (
	"net/http"

	"hirehub/globals"
	"hirehub/models"
)

// GetUserFromRequest returns the user the auth middleware attached, or nil.
func GetUserFromRequest(r *http.Request) *models.User {
	u, _ := r.Context().Value(globals.UserKey).(*models.User)
	return u
}
