package httpx

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	apperrors "storefront/internal/errors"
)

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 1
	if limit > 0 && total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// PageParams reads page and limit, falling back to defaults and capping
// limit at maxLimit.
func PageParams(r *http.Request, defaultLimit, maxLimit int) (page, limit int) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// QueryFilter returns a query parameter, treating "all" as absent.
func QueryFilter(r *http.Request, name string) string {
	v := r.URL.Query().Get(name)
	if v == "all" {
		return ""
	}
	return v
}

func QueryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be true or false",
		})
	}
	return &b, nil
}

// DateRange resolves day (YYYY-MM-DD), month (YYYY-MM) or
// start_date/end_date query parameters to a half-open UTC interval.
func DateRange(r *http.Request) (from, to *time.Time, err error) {
	q := r.URL.Query()

	parse := func(field, layout, value string) (time.Time, error) {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err != nil {
			return time.Time{}, apperrors.NewValidationError("invalid "+field, apperrors.ValidationDetail{
				Field:   field,
				Message: fmt.Sprintf("%s must match %s", field, layout),
			})
		}
		return t, nil
	}

	switch {
	case q.Get("day") != "":
		start, err := parse("day", "2006-01-02", q.Get("day"))
		if err != nil {
			return nil, nil, err
		}
		end := start.AddDate(0, 0, 1)
		return &start, &end, nil
	case q.Get("month") != "":
		start, err := parse("month", "2006-01", q.Get("month"))
		if err != nil {
			return nil, nil, err
		}
		end := start.AddDate(0, 1, 0)
		return &start, &end, nil
	}

	if v := q.Get("start_date"); v != "" {
		start, err := parse("start_date", "2006-01-02", v)
		if err != nil {
			return nil, nil, err
		}
		from = &start
	}
	if v := q.Get("end_date"); v != "" {
		end, err := parse("end_date", "2006-01-02", v)
		if err != nil {
			return nil, nil, err
		}
		end = end.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, nil
}
