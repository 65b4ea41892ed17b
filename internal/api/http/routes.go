package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weather-pipeline/internal/store"
	"weather-pipeline/internal/weather"
)

var validate = validator.New()

// WeatherReader is the read-only query surface the dashboard consumes.
// There is deliberately no mutation path here.
type WeatherReader interface {
	Latest(ctx context.Context) ([]weather.Record, error)
	LatestFor(ctx context.Context, city string) (weather.Record, error)
	History(ctx context.Context, city string, since, until time.Time) ([]weather.Record, error)
	Statistics(ctx context.Context, city string, days int) (weather.Statistics, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc WeatherReader) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		city := c.Query("city")

		if city == "" {
			recs, err := svc.Latest(c.Context())
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch latest records")
			}
			return c.JSON(fiber.Map{"records": recs})
		}

		rec, err := svc.LatestFor(c.Context(), city)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested city")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch latest record")
		}
		return c.JSON(rec)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		recs, err := svc.History(c.Context(), req.City, req.From, req.To)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"city":    req.City,
			"from":    req.From,
			"to":      req.To,
			"records": recs,
		})
	})

	v1.Get("/weather/statistics", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		days := defaultStatisticsDays
		if raw := c.Query("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "days must be a positive integer")
			}
			days = parsed
		}

		stats, err := svc.Statistics(c.Context(), city, days)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute weather statistics")
		}

		return c.JSON(fiber.Map{
			"city":       city,
			"days":       days,
			"statistics": stats,
		})
	})
}

// defaultStatisticsDays is the aggregation window used when the caller
// does not pass one.
const defaultStatisticsDays = 30

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	City string    `validate:"required"`
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.City = c.Query("city")

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
