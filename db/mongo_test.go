package db

import (
	"context"
	"testing"
	"time"

	"hirehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newMockStore(mt *mtest.T) (*MongoJobs, *MongoUsers) {
	users := mt.DB.Collection(usersCollection)
	return NewMongoJobs(mt.Coll, users), NewMongoUsers(users)
}

func ns(coll *mongo.Collection) string {
	return coll.Database().Name() + "." + coll.Name()
}

// sentCommand returns the first command with the given name sent by the client.
func sentCommand(mt *mtest.T, name string) bson.Raw {
	mt.Helper()
	for _, evt := range mt.GetAllStartedEvents() {
		if evt.CommandName == name {
			return evt.Command
		}
	}
	mt.Fatalf("no %q command was sent", name)
	return nil
}

func TestMongoAddApplicant(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("conditional push", func(mt *mtest.T) {
		jobs, _ := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1},
		))

		jobID, userID := primitive.NewObjectID(), primitive.NewObjectID()
		now := time.Now()
		a := models.Applicant{UserID: userID, AppliedAt: now, Status: models.StatusPending}
		require.NoError(mt, jobs.AddApplicant(context.Background(), jobID, a, now))

		cmd := sentCommand(mt, "update")
		q := cmd.Lookup("updates", "0", "q")
		assert.Equal(mt, jobID, q.Document().Lookup("_id").ObjectID())
		assert.Equal(mt, models.JobActive, q.Document().Lookup("status").StringValue())
		assert.Equal(mt, userID, q.Document().Lookup("applicants.userId", "$ne").ObjectID())

		// capacity check compares the array size against maxApplicants
		lt := q.Document().Lookup("$expr", "$lt")
		assert.Equal(mt, "$maxApplicants", lt.Array().Lookup("1").StringValue())
		assert.Equal(mt, "$applicants", lt.Array().Lookup("0", "$size", "$ifNull", "0").StringValue())

		or, err := q.Document().Lookup("$or").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, or, 2)
		assert.Equal(mt, bson.TypeNull, or[0].Document().Lookup("applicationDeadline").Type)
		_, hasGT := or[1].Document().Lookup("applicationDeadline", "$gt").DateTimeOK()
		assert.True(mt, hasGT)

		u := cmd.Lookup("updates", "0", "u")
		assert.Equal(mt, userID, u.Document().Lookup("$push", "applicants", "userId").ObjectID())
		assert.Equal(mt, models.StatusPending, u.Document().Lookup("$push", "applicants", "status").StringValue())
	})

	mt.Run("no match", func(mt *mtest.T) {
		jobs, _ := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))
		now := time.Now()
		err := jobs.AddApplicant(context.Background(), primitive.NewObjectID(),
			models.Applicant{UserID: primitive.NewObjectID(), AppliedAt: now}, now)
		assert.ErrorIs(mt, err, ErrConditionFailed)
	})
}

func TestMongoSetApplicantStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("positional set", func(mt *mtest.T) {
		jobs, _ := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1},
		))
		jobID, userID := primitive.NewObjectID(), primitive.NewObjectID()
		require.NoError(mt, jobs.SetApplicantStatus(context.Background(), jobID, userID, models.StatusInterview, time.Now()))

		cmd := sentCommand(mt, "update")
		assert.Equal(mt, jobID, cmd.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, userID, cmd.Lookup("updates", "0", "q", "applicants.userId").ObjectID())
		assert.Equal(mt, models.StatusInterview, cmd.Lookup("updates", "0", "u", "$set", "applicants.$.status").StringValue())
		_, ok := cmd.Lookup("updates", "0", "u", "$set", "applicants.$.updatedAt").DateTimeOK()
		assert.True(mt, ok)
	})

	mt.Run("applicant missing", func(mt *mtest.T) {
		jobs, _ := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))
		err := jobs.SetApplicantStatus(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), models.StatusHired, time.Now())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoApplicationsByUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unwind and attach posters", func(mt *mtest.T) {
		jobs, _ := newMockStore(mt)
		userID, poster := primitive.NewObjectID(), primitive.NewObjectID()
		jobID := primitive.NewObjectID()
		applied := time.Now().UTC().Truncate(time.Millisecond)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt.Coll), mtest.FirstBatch, bson.D{
				{Key: "jobId", Value: jobID},
				{Key: "appliedAt", Value: applied},
				{Key: "status", Value: models.StatusShortlisted},
				{Key: "job", Value: bson.D{
					{Key: "title", Value: "Go Developer"},
					{Key: "company", Value: "Acme"},
					{Key: "postedBy", Value: poster},
				}},
			}),
			mtest.CreateCursorResponse(0, ns(mt.DB.Collection(usersCollection)), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: poster},
				{Key: "name", Value: "Rita"},
				{Key: "email", Value: "rita@example.com"},
			}),
		)

		views, err := jobs.ApplicationsByUser(context.Background(), userID)
		require.NoError(mt, err)
		require.Len(mt, views, 1)
		assert.Equal(mt, jobID, views[0].JobID)
		assert.Equal(mt, models.StatusShortlisted, views[0].Status)
		assert.True(mt, applied.Equal(views[0].AppliedAt))
		assert.Equal(mt, "Go Developer", views[0].Job.Title)
		require.NotNil(mt, views[0].Job.Poster)
		assert.Equal(mt, "Rita", views[0].Job.Poster.Name)

		stages, err := sentCommand(mt, "aggregate").Lookup("pipeline").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, stages, 5)
		assert.Equal(mt, userID, stages[0].Document().Lookup("$match", "applicants.userId").ObjectID())
		assert.Equal(mt, "$applicants", stages[1].Document().Lookup("$unwind").StringValue())
		assert.Equal(mt, userID, stages[2].Document().Lookup("$match", "applicants.userId").ObjectID())
		assert.Equal(mt, "$applicants.status", stages[4].Document().Lookup("$project", "status").StringValue())
	})
}

func TestMongoFindJobs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("count then page", func(mt *mtest.T) {
		jobs, _ := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt.Coll), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(12)}}),
			mtest.CreateCursorResponse(0, ns(mt.Coll), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "title", Value: "Go Developer"}},
			),
		)

		got, total, err := jobs.FindJobs(context.Background(), JobQuery{
			Filter:   JobFilter{Status: models.JobActive},
			Page:     2,
			Limit:    5,
			SortBy:   "salary.min",
			SortDesc: true,
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(12), total)
		require.Len(mt, got, 1)
		assert.Equal(mt, "Go Developer", got[0].Title)

		find := sentCommand(mt, "find")
		assert.Equal(mt, models.JobActive, find.Lookup("filter", "status").StringValue())
		assert.EqualValues(mt, 5, find.Lookup("skip").AsInt64())
		assert.EqualValues(mt, 5, find.Lookup("limit").AsInt64())
		assert.EqualValues(mt, -1, find.Lookup("sort", "salary.min").AsInt64())
		assert.EqualValues(mt, 0, find.Lookup("projection", "applicants").AsInt64())
	})
}

func TestMongoUsers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email", func(mt *mtest.T) {
		_, users := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))
		err := users.CreateUser(context.Background(), &models.User{Name: "a", Email: "a@example.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		_, users := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt.DB.Collection(usersCollection)), mtest.FirstBatch))
		_, err := users.UserByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestOpenDisconnectsWhenIndexesFail(t *testing.T) {
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(200*time.Millisecond).
		SetConnectTimeout(200*time.Millisecond))
	require.NoError(t, err)

	_, err = open(ctx, client, "hirehub_test")
	require.Error(t, err)
	assert.ErrorIs(t, client.Disconnect(ctx), mongo.ErrClientDisconnected)
}
