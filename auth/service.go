package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"hirehub/db"
	"hirehub/filemgr"
	"hirehub/globals"
	"hirehub/middleware"
	"hirehub/models"
	"hirehub/policy"
	"hirehub/utils"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// restrictedFields may never be changed through UpdateUser.
var restrictedFields = []string{
	"_id", "id", "email", "password", "role",
	"jobsPosted", "jobsApplied", "quizzesTaken", "mentorshipSessions", "communitiesJoined",
}

type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type Service struct {
	store    db.Store
	tokens   *middleware.Tokens
	sessions Revoker
	files    *filemgr.Store
	cost     int
}

func NewService(store db.Store, tokens *middleware.Tokens, sessions Revoker, files *filemgr.Store) *Service {
	return &Service{store: store, tokens: tokens, sessions: sessions, files: files, cost: BcryptCost}
}

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"oneof=employee recruiter mentor"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed-in user plus the token for its cookie.
type Session struct {
	User  *models.User
	Token string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = globals.RoleEmployee
	}
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, models.NewValidationError("Validation failed", errs...)
	}

	if _, err := s.store.UserByEmail(ctx, in.Email); err == nil {
		return nil, models.NewConflictError("User already exist")
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError("hash password", err)
	}

	now := time.Now()
	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  string(hash),
		Role:      in.Role,
		Skills:    []string{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, models.NewConflictError("User already exist")
		}
		return nil, err
	}
	return s.startSession(user)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, models.NewValidationError("Validation failed", errs...)
	}

	user, err := s.store.UserByEmail(ctx, in.Email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, models.NewNotFoundError("User does not exist").WithStatus(400)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewInvalidCredentialsError("Incorrect Password")
	}
	return s.startSession(user)
}

func (s *Service) startSession(user *models.User) (*Session, error) {
	token, _, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, models.NewInternalError("issue token", err)
	}
	return &Session{User: user, Token: token}, nil
}

// Logout revokes the token behind claims. A nil claims (no or invalid session) is a no-op.
func (s *Service) Logout(ctx context.Context, claims *middleware.Claims) error {
	if claims == nil || s.sessions == nil {
		return nil
	}
	return s.sessions.Revoke(ctx, claims.ID, s.tokens.Remaining(claims))
}

// Me returns the user with the job views derived from the job collection.
func (s *Service) Me(ctx context.Context, user *models.User) (*models.UserProfileResponse, error) {
	posted, err := s.store.JobIDsByPoster(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	apps, err := s.store.ApplicationsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	applied := make([]models.AppliedJob, 0, len(apps))
	for _, a := range apps {
		applied = append(applied, models.AppliedJob{JobID: a.JobID, AppliedAt: a.AppliedAt, Status: a.Status})
	}
	return models.NewUserProfile(user, posted, applied), nil
}

// ProfileUpdate lists the fields a user may change on their own profile.
type ProfileUpdate struct {
	Name                  *string  `json:"name" validate:"omitempty,min=1,max=50"`
	Bio                   *string  `json:"bio" validate:"omitempty,max=500"`
	Location              *string  `json:"location" validate:"omitempty,max=100"`
	Skills                []string `json:"skills" validate:"omitempty,dive,required"`
	Experience            *int     `json:"experience" validate:"omitempty,gte=0"`
	ProfilePicture        *string  `json:"profilePicture"`
	IsActive              *bool    `json:"isActive"`
	Expertise             []string `json:"expertise" validate:"omitempty,dive,required"`
	AvailableForMentoring *bool    `json:"availableForMentoring"`
	CurrentPassword       string   `json:"currentPassword"`
	NewPassword           string   `json:"newPassword" validate:"omitempty,min=6"`
}

func (s *Service) loadOwnedUser(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	oid, err := db.ParseObjectID(id)
	if err != nil {
		return nil, models.NewNotFoundError("User not found")
	}
	if err := policy.Can(actor, policy.UpdateProfile, &models.User{ID: oid}); err != nil {
		return nil, err
	}
	target, err := s.store.UserByID(ctx, oid)
	if errors.Is(err, db.ErrNotFound) {
		return nil, models.NewNotFoundError("User not found")
	}
	return target, err
}

// UpdateUser applies a raw JSON update document to the actor's own profile.
func (s *Service) UpdateUser(ctx context.Context, actor *models.User, id string, raw []byte) (*models.User, error) {
	target, err := s.loadOwnedUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, models.NewValidationError("Invalid request body", err.Error())
	}
	for _, field := range restrictedFields {
		if _, ok := keys[field]; ok {
			return nil, models.NewValidationError("Cannot update " + field + " field")
		}
	}

	var in ProfileUpdate
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, models.NewValidationError("Invalid request body", err.Error())
	}
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, models.NewValidationError("Validation failed", errs...)
	}

	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return nil, models.NewValidationError("Current password is required to update password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(target.Password), []byte(in.CurrentPassword)); err != nil {
			return nil, models.NewValidationError("Current password is incorrect")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cost)
		if err != nil {
			return nil, models.NewInternalError("hash password", err)
		}
		target.Password = string(hash)
	}

	applyProfileUpdate(target, in)
	if err := s.store.UpdateUserProfile(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func applyProfileUpdate(u *models.User, in ProfileUpdate) {
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Location != nil {
		u.Location = *in.Location
	}
	if in.Skills != nil {
		u.Skills = in.Skills
	}
	if in.Experience != nil {
		u.Experience = *in.Experience
	}
	if in.ProfilePicture != nil {
		u.ProfilePicture = *in.ProfilePicture
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.Expertise != nil {
		u.Expertise = in.Expertise
	}
	if in.AvailableForMentoring != nil {
		u.AvailableForMentoring = *in.AvailableForMentoring
	}
}

// UploadAvatar stores a new profile picture for the actor and saves its path.
func (s *Service) UploadAvatar(ctx context.Context, actor *models.User, id string, file io.Reader, filename string) (*models.User, error) {
	target, err := s.loadOwnedUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	path, err := s.files.SaveAvatar(file, filename, target.ID.Hex())
	if err != nil {
		return nil, models.NewValidationError("Invalid profile picture", err.Error())
	}
	target.ProfilePicture = path
	if err := s.store.UpdateUserProfile(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}
