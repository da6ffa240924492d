// Package query: liste endpoint'lerinin ortak filtre ve sayfalama parse'ı.
package query

import (
	"strconv"
	"strings"
	"time"

	"equipment-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultLimit = 100

const dateLayout = "2006-01-02"

// Page: limit/offset. Offset verilip limit verilmezse DefaultLimit uygulanır.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Apply(q *gorm.DB) *gorm.DB {
	limit := p.Limit
	if p.Offset > 0 {
		if limit <= 0 {
			limit = DefaultLimit
		}
		q = q.Offset(p.Offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func ParsePage(c *fiber.Ctx) (Page, error) {
	var p Page
	var err error
	if p.Limit, err = nonNegative(c.Query("limit"), "limit"); err != nil {
		return p, err
	}
	if p.Offset, err = nonNegative(c.Query("offset"), "offset"); err != nil {
		return p, err
	}
	return p, nil
}

func nonNegative(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, apperror.Validation("%s must be a non-negative integer", name)
	}
	return n, nil
}

// OptionalUUID: boş ise nil
func OptionalUUID(s, name string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperror.Validation("%s must be a valid UUID", name)
	}
	return &id, nil
}

// ParamUUID: path parametresi. Geçersiz UUID hiçbir kayda eşleşemeyeceği için NotFound döner.
func ParamUUID(c *fiber.Ctx, name, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.NotFound("%s not found", entity)
	}
	return id, nil
}

// DateRange: start/end RFC3339 ya da YYYY-MM-DD. Sadece tarih verilen end günün sonuna kadar kapsar.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		t, _, err := parseTime(start)
		if err != nil {
			return r, apperror.Validation("start_date must be YYYY-MM-DD or RFC3339")
		}
		r.Start = &t
	}
	if end != "" {
		t, dateOnly, err := parseTime(end)
		if err != nil {
			return r, apperror.Validation("end_date must be YYYY-MM-DD or RFC3339")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.End = &t
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return r, apperror.Validation("end_date must not be before start_date")
	}
	return r, nil
}

func (r DateRange) Apply(q *gorm.DB, column string) *gorm.DB {
	if r.Start != nil {
		q = q.Where(column+" >= ?", *r.Start)
	}
	if r.End != nil {
		q = q.Where(column+" <= ?", *r.End)
	}
	return q
}

func parseTime(s string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t.UTC(), false, err
}
