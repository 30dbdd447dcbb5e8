package api

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/couchcryptid/tourism-dashboard-service/internal/dataset"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
)

var validate = validator.New()

// visitorsQuery holds the visitor-statistics date range, as YYYYMMDD.
type visitorsQuery struct {
	Start string `validate:"omitempty,len=8,numeric"`
	End   string `validate:"omitempty,len=8,numeric"`
}

// bind reads the range, defaulting both ends to the same day one month ago
// in the provider location.
func (q *visitorsQuery) bind(c *fiber.Ctx, loc *time.Location) error {
	q.Start = c.Query("start")
	q.End = c.Query("end")
	if err := validate.Struct(q); err != nil {
		return err
	}

	if loc == nil {
		loc = domain.DefaultLocation
	}
	monthAgo := domain.Now().In(loc).AddDate(0, -1, 0).Format("20060102")
	if q.Start == "" {
		q.Start = monthAgo
	}
	if q.End == "" {
		q.End = q.Start
	}
	if q.End < q.Start {
		return errors.New("end must not be before start")
	}
	return nil
}

type forecastQuery struct {
	Category string `validate:"required,oneof=T1H RN1 SKY REH PTY"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	q.Category = strings.ToUpper(c.Query("category"))
	return validate.Struct(q)
}

type consumptionQuery struct {
	Gender string `validate:"required,oneof=전체 남성 여성"`
}

func (q *consumptionQuery) bind(c *fiber.Ctx) error {
	q.Gender = c.Query("gender", string(domain.GenderAll))
	return validate.Struct(q)
}

// datasetQuery holds the paging, projection and aggregation parameters of a
// dataset file view.
type datasetQuery struct {
	Filter    string
	Columns   []string
	Offset    int `validate:"gte=0"`
	Limit     int `validate:"gte=0,lte=10000"`
	GroupBy   string
	Aggregate string `validate:"omitempty,contains=:"`
	DateRange string `validate:"omitempty,contains=:"`
}

func (q *datasetQuery) bind(c *fiber.Ctx) error {
	q.Filter = c.Query("filter")
	if cols := c.Query("columns"); cols != "" {
		for _, col := range strings.Split(cols, ",") {
			if col = strings.TrimSpace(col); col != "" {
				q.Columns = append(q.Columns, col)
			}
		}
	}
	q.Offset = c.QueryInt("offset", 0)
	q.Limit = c.QueryInt("limit", dataset.DefaultLimit)
	q.GroupBy = c.Query("group_by")
	q.Aggregate = c.Query("aggregate")
	q.DateRange = c.Query("date_range")
	return validate.Struct(q)
}

// processing reports whether the request asks for the grouped view rather
// than a page of rows.
func (q datasetQuery) processing() bool {
	return q.GroupBy != "" || q.Aggregate != "" || q.DateRange != ""
}

type selectionRequest struct {
	Region string `json:"region" validate:"required"`
}
