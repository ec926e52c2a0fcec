package utils

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*MaxLimit well inside int range.
	MaxPage = 1_000_000
)

type PageOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Desc reports whether the caller asked for descending order. Anything but "asc" is descending.
func (o PageOptions) Desc() bool {
	return o.SortOrder != "asc"
}

// Offset saturates at math.MaxInt instead of wrapping for out-of-range pages.
func (o PageOptions) Offset() int {
	if o.Page < 1 || o.Limit < 1 {
		return 0
	}
	if o.Page-1 > math.MaxInt/o.Limit {
		return math.MaxInt
	}
	return (o.Page - 1) * o.Limit
}

func ParsePageOptions(r *http.Request) PageOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PageOptions{
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sortBy"),
		SortOrder: strings.ToLower(q.Get("sortOrder")),
	}
}

// Pagination builds the pagination block. totalKey names the count, e.g. "totalJobs".
func Pagination(page, limit int, total int64, totalKey string) M {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return M{
		"currentPage": page,
		"totalPages":  totalPages,
		totalKey:      total,
		"hasNext":     page < totalPages,
		"hasPrev":     page > 1,
	}
}

// Paginate returns the page of items described by o.
func Paginate[T any](items []T, o PageOptions) []T {
	start := min(o.Offset(), len(items))
	end := min(start+o.Limit, len(items))
	return items[start:end]
}

// SplitList splits a comma-separated query value, trimming blanks.
func SplitList(input string) []string {
	var out []string
	for _, p := range strings.Split(input, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseFloatParam returns nil when the value is empty or not a number.
func ParseFloatParam(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
