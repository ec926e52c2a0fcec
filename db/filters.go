package db

import (
	"regexp"
	"slices"
	"strings"

	"hirehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobFilter narrows a job listing. Zero values mean "no constraint".
type JobFilter struct {
	Status    string
	PostedBy  primitive.ObjectID
	Location  string
	JobType   string
	WorkMode  string
	Category  string
	Skills    []string
	MinSalary *float64
	MaxSalary *float64
	Search    string
}

// SortableJobFields maps accepted sortBy values to document fields.
var SortableJobFields = map[string]string{
	"createdAt":           "createdAt",
	"updatedAt":           "updatedAt",
	"title":               "title",
	"company":             "company",
	"salary.min":          "salary.min",
	"salary.max":          "salary.max",
	"views":               "views",
	"applicationDeadline": "applicationDeadline",
}

const DefaultJobSort = "createdAt"

// SortField returns the document field for sortBy, falling back to createdAt.
func SortField(sortBy string) string {
	if f, ok := SortableJobFields[sortBy]; ok {
		return f
	}
	return DefaultJobSort
}

// RegexFilter builds a case-insensitive substring match on field. The term is
// quoted so user input never becomes a pattern.
func RegexFilter(field, term string) bson.M {
	return bson.M{field: primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}}
}

// BSON converts the filter into a mongo query document.
func (f JobFilter) BSON() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.PostedBy.IsZero() {
		filter["postedBy"] = f.PostedBy
	}
	if f.Location != "" {
		filter["location"] = RegexFilter("location", f.Location)["location"]
	}
	if f.JobType != "" {
		filter["jobType"] = f.JobType
	}
	if f.WorkMode != "" {
		filter["workMode"] = f.WorkMode
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if len(f.Skills) > 0 {
		filter["skills"] = bson.M{"$in": f.Skills}
	}
	if f.MinSalary != nil {
		filter["salary.min"] = bson.M{"$gte": *f.MinSalary}
	}
	if f.MaxSalary != nil {
		filter["salary.max"] = bson.M{"$lte": *f.MaxSalary}
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			RegexFilter("title", f.Search),
			RegexFilter("description", f.Search),
			RegexFilter("company", f.Search),
		}
	}
	return filter
}

// Match reports whether j satisfies the filter. It mirrors BSON for the in-memory store.
func (f JobFilter) Match(j *models.Job) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if !f.PostedBy.IsZero() && j.PostedBy != f.PostedBy {
		return false
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.JobType != "" && j.JobType != f.JobType {
		return false
	}
	if f.WorkMode != "" && j.WorkMode != f.WorkMode {
		return false
	}
	if f.Category != "" && j.Category != f.Category {
		return false
	}
	if len(f.Skills) > 0 && !slices.ContainsFunc(f.Skills, func(s string) bool {
		return slices.Contains(j.Skills, s)
	}) {
		return false
	}
	if f.MinSalary != nil && j.Salary.Min < *f.MinSalary {
		return false
	}
	if f.MaxSalary != nil && j.Salary.Max > *f.MaxSalary {
		return false
	}
	if f.Search != "" && !containsFold(j.Title, f.Search) &&
		!containsFold(j.Description, f.Search) && !containsFold(j.Company, f.Search) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
