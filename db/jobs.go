package db

import (
	"context"
	"errors"
	"time"

	"hirehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoJobs struct {
	jobs  *mongo.Collection
	users *mongo.Collection
}

func NewMongoJobs(jobs, users *mongo.Collection) *MongoJobs {
	return &MongoJobs{jobs: jobs, users: users}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (s *MongoJobs) InsertJob(ctx context.Context, j *models.Job) error {
	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if j.Applicants == nil {
		j.Applicants = []models.Applicant{}
	}
	_, err := s.jobs.InsertOne(ctx, j)
	return err
}

func (s *MongoJobs) JobByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var j models.Job
	if err := s.jobs.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		return nil, notFound(err)
	}
	return &j, nil
}

func (s *MongoJobs) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var j models.Job
	err := s.jobs.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&j)
	if err != nil {
		return nil, notFound(err)
	}
	return &j, nil
}

func (s *MongoJobs) FindJobs(ctx context.Context, q JobQuery) ([]models.Job, int64, error) {
	filter := q.Filter.BSON()

	total, err := s.jobs.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	order := 1
	if q.SortDesc {
		order = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: SortField(q.SortBy), Value: order}, {Key: "_id", Value: order}}).
		SetSkip(q.Skip())
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if !q.WithApplicants {
		opts.SetProjection(bson.M{"applicants": 0})
	}

	cursor, err := s.jobs.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	jobs := []models.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (s *MongoJobs) UpdateJob(ctx context.Context, j *models.Job) error {
	res, err := s.jobs.UpdateOne(ctx, bson.M{"_id": j.ID}, bson.M{"$set": bson.M{
		"title":               j.Title,
		"description":         j.Description,
		"company":             j.Company,
		"location":            j.Location,
		"jobType":             j.JobType,
		"workMode":            j.WorkMode,
		"category":            j.Category,
		"salary":              j.Salary,
		"experience":          j.Experience,
		"skills":              j.Skills,
		"requirements":        j.Requirements,
		"benefits":            j.Benefits,
		"tags":                j.Tags,
		"isUrgent":            j.IsUrgent,
		"status":              j.Status,
		"applicationDeadline": j.ApplicationDeadline,
		"maxApplicants":       j.MaxApplicants,
		"updatedAt":           j.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoJobs) DeleteJob(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.jobs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddApplicant runs every admission check inside the update filter so two
// concurrent applies can never both pass the capacity or duplicate check.
func (s *MongoJobs) AddApplicant(ctx context.Context, jobID primitive.ObjectID, a models.Applicant, now time.Time) error {
	filter := bson.M{
		"_id":               jobID,
		"status":            models.JobActive,
		"applicants.userId": bson.M{"$ne": a.UserID},
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": bson.M{"$ifNull": bson.A{"$applicants", bson.A{}}}},
			"$maxApplicants",
		}},
		"$or": bson.A{
			bson.M{"applicationDeadline": nil},
			bson.M{"applicationDeadline": bson.M{"$gt": now}},
		},
	}
	update := bson.M{
		"$push": bson.M{"applicants": a},
		"$set":  bson.M{"updatedAt": now},
	}
	res, err := s.jobs.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (s *MongoJobs) SetApplicantStatus(ctx context.Context, jobID, userID primitive.ObjectID, status string, now time.Time) error {
	res, err := s.jobs.UpdateOne(ctx,
		bson.M{"_id": jobID, "applicants.userId": userID},
		bson.M{"$set": bson.M{
			"applicants.$.status":    status,
			"applicants.$.updatedAt": now,
			"updatedAt":              now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplicationsByUser unwinds the applicant arrays of every job userID applied
// to, newest application first.
func (s *MongoJobs) ApplicationsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ApplicationView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"applicants.userId": userID}}},
		{{Key: "$unwind", Value: "$applicants"}},
		{{Key: "$match", Value: bson.M{"applicants.userId": userID}}},
		{{Key: "$sort", Value: bson.M{"applicants.appliedAt": -1}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"jobId":        "$_id",
			"appliedAt":    "$applicants.appliedAt",
			"status":       "$applicants.status",
			"coverLetter":  "$applicants.coverLetter",
			"resume":       "$applicants.resume",
			"job.title":    "$title",
			"job.company":  "$company",
			"job.location": "$location",
			"job.jobType":  "$jobType",
			"job.workMode": "$workMode",
			"job.status":   "$status",
			"job.salary":   "$salary",
			"job.postedBy": "$postedBy",
		}}},
	}
	cursor, err := s.jobs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	views := []models.ApplicationView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	if err := s.attachPosters(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *MongoJobs) attachPosters(ctx context.Context, views []models.ApplicationView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.Job.PostedBy)
	}
	posters, err := NewMongoUsers(s.users).UsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range views {
		if u, ok := posters[views[i].Job.PostedBy]; ok {
			views[i].Job.Poster = &models.Poster{Name: u.Name, Email: u.Email}
		}
	}
	return nil
}

func (s *MongoJobs) JobIDsByPoster(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.jobs.Find(ctx, bson.M{"postedBy": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
