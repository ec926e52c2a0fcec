package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"hirehub/globals"
	"hirehub/models"
	"hirehub/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserLookup interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Revoker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var errNoToken = errors.New("no session token")

// Auth resolves the session token on a request to a user.
type Auth struct {
	Tokens   *Tokens
	Users    UserLookup
	Sessions Revoker
	Cookie   SessionCookie
}

// TokenFromRequest reads the session cookie, falling back to a Bearer header.
func (a *Auth) TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(a.Cookie.Name); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Claims verifies the request's token without loading the user.
func (a *Auth) Claims(r *http.Request) (*Claims, error) {
	tokenString := a.TokenFromRequest(r)
	if tokenString == "" {
		return nil, errNoToken
	}
	claims, err := a.Tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if a.Sessions != nil {
		revoked, err := a.Sessions.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			log.Printf("session revocation check failed: %v", err)
			return nil, err
		}
		if revoked {
			return nil, errors.New("session revoked")
		}
	}
	return claims, nil
}

func (a *Auth) resolve(r *http.Request) (*http.Request, error) {
	claims, err := a.Claims(r)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, err
	}
	user, err := a.Users.UserByID(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return r.WithContext(context.WithValue(r.Context(), globals.UserKey, user)), nil
}

// Authenticate rejects the request with 401 unless it carries a valid, unrevoked
// session for an existing user.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		authed, err := a.resolve(r)
		if err != nil {
			utils.RespondWithError(w, models.NewUnauthorizedError("Not authorized, please log in"))
			return
		}
		next(w, authed, ps)
	}
}

// OptionalAuth attaches the user when the session is valid and proceeds regardless.
func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if authed, err := a.resolve(r); err == nil {
			r = authed
		}
		next(w, r, ps)
	}
}
