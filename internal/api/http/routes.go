package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/crop-yield-prediction/internal/store"
	"github.com/i474232898/crop-yield-prediction/internal/yield"
)

var validate = validator.New()

// Predictor is the part of yield.Service the routes depend on.
type Predictor interface {
	Predict(ctx context.Context, in yield.EnvironmentalInput) yield.Outcome
	Insights(est yield.Estimate) yield.Insights
	Status() []yield.ProbeResult
	History(provider string, from, to time.Time) ([]yield.ProbeResult, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. predictTimeout
// bounds each prediction; zero means no extra bound.
func RegisterRoutes(app *fiber.App, service Predictor, predictTimeout time.Duration) {
	v1 := app.Group("/api/v1")

	predict := func(c *fiber.Ctx) (yield.Outcome, error) {
		in, err := parseInput(c)
		if err != nil {
			return yield.Outcome{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx := c.UserContext()
		if predictTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, predictTimeout)
			defer cancel()
		}
		return service.Predict(ctx, in), nil
	}

	v1.Post("/predictions", func(c *fiber.Ctx) error {
		out, err := predict(c)
		if err != nil {
			return err
		}
		c.Set("X-Prediction-Id", out.ID)
		return c.JSON(out.Estimate)
	})

	v1.Post("/insights", func(c *fiber.Ctx) error {
		out, err := predict(c)
		if err != nil {
			return err
		}
		c.Set("X-Prediction-Id", out.ID)
		return c.JSON(service.Insights(out.Estimate))
	})

	v1.Get("/crops", func(c *fiber.Ctx) error {
		return c.JSON(yield.Catalog())
	})

	v1.Get("/countries", func(c *fiber.Ctx) error {
		return c.JSON(yield.Countries)
	})

	v1.Get("/providers/status", func(c *fiber.Ctx) error {
		status := service.Status()
		if status == nil {
			status = []yield.ProbeResult{}
		}
		return c.JSON(fiber.Map{
			"providers": status,
		})
	})

	v1.Get("/providers/:name/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results, err := service.History(req.Provider, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no probe history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch probe history")
		}

		return c.JSON(fiber.Map{
			"provider": req.Provider,
			"from":     req.From,
			"to":       req.To,
			"results":  results,
		})
	})
}

func parseInput(c *fiber.Ctx) (yield.EnvironmentalInput, error) {
	var in yield.EnvironmentalInput
	if err := c.BodyParser(&in); err != nil {
		return in, errors.New("invalid request body")
	}

	if err := validate.Struct(in); err != nil {
		return in, err
	}

	return in, nil
}

// historyQuery holds path and query parameters for the history endpoint.
type historyQuery struct {
	Provider string    `validate:"required"`
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.Provider = c.Params("name")

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
