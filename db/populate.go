package db

import (
	"context"

	"hirehub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PopulateApplicants pairs each applicant entry with its user's profile summary.
// Entries whose user no longer exists keep a nil User.
func PopulateApplicants(ctx context.Context, users UserStore, applicants []models.Applicant) ([]models.ApplicantView, error) {
	views := make([]models.ApplicantView, 0, len(applicants))
	if len(applicants) == 0 {
		return views, nil
	}
	ids := make([]primitive.ObjectID, 0, len(applicants))
	for _, a := range applicants {
		ids = append(ids, a.UserID)
	}
	found, err := users.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range applicants {
		v := models.ApplicantView{Applicant: a}
		if u, ok := found[a.UserID]; ok {
			summary := u.Summary()
			v.User = &summary
		}
		views = append(views, v)
	}
	return views, nil
}

// Posters returns name and email for each poster id.
func Posters(ctx context.Context, users UserStore, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Poster, error) {
	found, err := users.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]*models.Poster, len(found))
	for id, u := range found {
		out[id] = &models.Poster{Name: u.Name, Email: u.Email}
	}
	return out, nil
}
