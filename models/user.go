package models

import (
	"math"
	"time"

	"hirehub/globals"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"`
	Role     string             `json:"role" bson:"role"`

	ProfilePicture string   `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	Bio            string   `json:"bio,omitempty" bson:"bio,omitempty"`
	Location       string   `json:"location,omitempty" bson:"location,omitempty"`
	Skills         []string `json:"skills" bson:"skills"`
	Experience     int      `json:"experience" bson:"experience"`
	IsActive       bool     `json:"isActive" bson:"isActive"`

	// mentor
	Expertise             []string            `json:"expertise,omitempty" bson:"expertise,omitempty"`
	AvailableForMentoring bool                `json:"availableForMentoring" bson:"availableForMentoring"`
	MentorshipSessions    []MentorshipSession `json:"mentorshipSessions,omitempty" bson:"mentorshipSessions,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type MentorshipSession struct {
	MenteeID    primitive.ObjectID `json:"menteeId" bson:"menteeId"`
	SessionDate time.Time          `json:"sessionDate" bson:"sessionDate"`
	Duration    int                `json:"duration" bson:"duration"` // minutes
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Rating      int                `json:"rating,omitempty" bson:"rating,omitempty"`
}

// AppliedJob is one entry of a user's applications, read off the job's applicant list.
type AppliedJob struct {
	JobID     primitive.ObjectID `json:"jobId" bson:"jobId"`
	AppliedAt time.Time          `json:"appliedAt" bson:"appliedAt"`
	Status    string             `json:"status" bson:"status"`
}

// UserProfileResponse is the /me payload: the stored user plus its derived job views.
type UserProfileResponse struct {
	*User
	JobsPosted             []primitive.ObjectID `json:"jobsPosted,omitempty"`
	JobsApplied            []AppliedJob         `json:"jobsApplied,omitempty"`
	JobApplicationCount    int                  `json:"jobApplicationCount"`
	MentorshipSessionCount int                  `json:"mentorshipSessionCount,omitempty"`
	AverageMentorRating    float64              `json:"averageMentorRating,omitempty"`
}

// NewUserProfile attaches the derived views to u. Mentor statistics are only
// filled in for mentors.
func NewUserProfile(u *User, posted []primitive.ObjectID, applied []AppliedJob) *UserProfileResponse {
	p := &UserProfileResponse{
		User:                u,
		JobsPosted:          posted,
		JobsApplied:         applied,
		JobApplicationCount: len(applied),
	}
	if u.HasRole(globals.RoleMentor) {
		p.MentorshipSessionCount = u.MentorshipSessionCount()
		p.AverageMentorRating = u.AverageMentorRating()
	}
	return p
}

// UserSummary is what recruiters see of an applicant.
type UserSummary struct {
	ID             primitive.ObjectID `json:"_id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	ProfilePicture string             `json:"profilePicture,omitempty"`
	Skills         []string           `json:"skills"`
	Experience     int                `json:"experience"`
}

func (u *User) Summary() UserSummary {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		Skills:         skills,
		Experience:     u.Experience,
	}
}

func (u *User) HasRole(role string) bool {
	return u != nil && u.Role == role
}

func (u *User) MentorshipSessionCount() int {
	return len(u.MentorshipSessions)
}

// AverageMentorRating averages rated sessions only, rounded to one decimal.
func (u *User) AverageMentorRating() float64 {
	total, n := 0, 0
	for _, s := range u.MentorshipSessions {
		if s.Rating > 0 {
			total += s.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(n)*10) / 10
}
