package jobs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hirehub/globals"
	"hirehub/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobHandlers(t *testing.T) {
	svc, store, _ := newTestService(t)
	tokens := middleware.NewTokens("test-secret", middleware.TokenTTL)
	mw := &middleware.Auth{Tokens: tokens, Users: store, Cookie: middleware.SessionCookie{Name: "hirehub-token"}}
	h := NewHandler(svc)

	router := httprouter.New()
	router.GET("/api/job", h.List)
	router.POST("/api/job", mw.Authenticate(h.Create))
	router.GET("/api/job/:id", mw.OptionalAuth(h.Get))
	router.DELETE("/api/job/:id", mw.Authenticate(h.Delete))

	recruiter := createUser(t, store, "rita", globals.RoleRecruiter)
	token, _, err := tokens.Issue(recruiter.ID.Hex())
	require.NoError(t, err)

	do := func(method, path, body, bearer string) (*httptest.ResponseRecorder, map[string]any) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return rec, out
	}

	body := `{"title":"Go Developer","description":"APIs","company":"Acme","location":"Remote",
		"jobType":"contract","workMode":"remote","category":"technology","skills":["go"],
		"salary":{"min":10,"max":20},"applicationDeadline":"2999-01-01"}`

	rec, _ := do(http.MethodPost, "/api/job", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, out := do(http.MethodPost, "/api/job", body, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Job posted successfully", out["message"])
	data := out["data"].(map[string]any)
	id := data["_id"].(string)
	assert.Equal(t, recruiter.ID.Hex(), data["postedBy"])

	rec, out = do(http.MethodGet, "/api/job?jobType=contract&page=1&limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["data"], 1)
	pagination := out["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["totalJobs"])
	assert.EqualValues(t, 1, pagination["totalPages"])
	assert.Equal(t, false, pagination["hasNext"])

	rec, out = do(http.MethodGet, "/api/job/"+id, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, out["data"].(map[string]any)["views"])

	rec, out = do(http.MethodDelete, "/api/job/"+id, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Job deleted successfully", out["message"])

	rec, out = do(http.MethodGet, "/api/job/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job not found", out["message"])
	assert.Equal(t, false, out["success"])
}
