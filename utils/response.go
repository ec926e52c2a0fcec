package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"hirehub/models"
)

type M map[string]any

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// RespondSuccess writes the {success:true, message?, data?} envelope.
func RespondSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	body := M{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	RespondWithJSON(w, statusCode, body)
}

// RespondWithError maps err onto a status code and the {success:false} envelope.
// Errors that are not AppErrors are logged and reported as a bare 500.
func RespondWithError(w http.ResponseWriter, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError("Internal server error", err)
	}

	message := appErr.Message
	if appErr.Kind == models.KindInternal {
		log.Printf("internal error: %v", appErr)
		message = "Internal server error"
	}

	body := M{"success": false, "message": message}
	if len(appErr.Errors) > 0 {
		body["errors"] = appErr.Errors
	}
	RespondWithJSON(w, appErr.HTTPStatus(), body)
}

// DecodeJSON reads the request body into dst, reporting malformed bodies as validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.NewValidationError("Invalid request body", err.Error())
	}
	return nil
}
