package httpapi

import (
	"errors"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pvops/cams-pipeline/internal/config"
	"github.com/pvops/cams-pipeline/internal/pipeline"
	"github.com/pvops/cams-pipeline/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the pipeline status handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, cfg *config.Config, runner *pipeline.Runner, runs *store.MemoryStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/pipeline/status", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"pendingFiles":   countFiles(cfg.UnprocessedFolder),
			"processedFiles": countFiles(cfg.ProcessedFolder),
			"resultFiles":    countFiles(cfg.ResultsFolder),
		}

		latest, err := runs.Latest()
		if err == nil {
			status["latestRun"] = latest
		} else if !errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run history")
		}

		return c.JSON(status)
	})

	v1.Get("/pipeline/runs", func(c *fiber.Ctx) error {
		req, err := parseRunsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reports, err := runs.Recent(req.Limit)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no pipeline runs recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run history")
		}

		return c.JSON(fiber.Map{
			"limit": req.Limit,
			"runs":  reports,
		})
	})

	v1.Post("/pipeline/runs", func(c *fiber.Ctx) error {
		report, err := runner.Run(c.Context())
		if err != nil {
			// The report still carries the run id and failure context.
			return c.Status(fiber.StatusInternalServerError).JSON(report)
		}
		return c.JSON(report)
	})
}

// runsQuery holds query parameters for the run-history endpoint.
type runsQuery struct {
	Limit int `validate:"min=1,max=100"`
}

func parseRunsQuery(c *fiber.Ctx) (runsQuery, error) {
	q := runsQuery{Limit: 20}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("limit must be an integer")
		}
		q.Limit = n
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// countFiles returns the number of regular files in dir; unreadable or
// missing directories count zero.
func countFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n
}
