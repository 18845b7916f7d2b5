package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pvops/cams-pipeline/internal/cams"
	"github.com/pvops/cams-pipeline/internal/config"
	"github.com/pvops/cams-pipeline/internal/frame"
	"github.com/pvops/cams-pipeline/internal/validate"
)

// ErrEmptyResult is returned when the fetch loop completes but produced no
// rows; an empty batch is fatal for the run.
var ErrEmptyResult = errors.New("fetch returned an empty result set")

// RunReport summarizes one orchestrator pass for logs and the status API.
type RunReport struct {
	ID         string    `json:"id"`
	File       string    `json:"file,omitempty"`
	Locations  int       `json:"locations"`
	Rows       int       `json:"rows"`
	Output     string    `json:"output,omitempty"`
	Skipped    bool      `json:"skipped"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
}

// RunRecorder receives finished run reports. The in-memory store implements
// it for the status API.
type RunRecorder interface {
	Save(report RunReport)
}

// Runner executes the processing sequence: pick the oldest pending chunk
// file, fetch CAMS data for each of its locations, validate the combined row
// count, persist the result and archive the input. Every step is fail-fast;
// a failed run leaves the pending file in place for the next attempt.
type Runner struct {
	cfg    *config.Config
	client cams.Fetcher
	runs   RunRecorder
}

// NewRunner creates a Runner. runs may be nil when no history is wanted.
func NewRunner(cfg *config.Config, client cams.Fetcher, runs RunRecorder) *Runner {
	return &Runner{
		cfg:    cfg,
		client: client,
		runs:   runs,
	}
}

// Run executes one pass. An empty unprocessed folder is a normal no-op
// completion, reported with Skipped set and a nil error.
func (r *Runner) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	err := r.run(ctx, &report)
	report.DurationMS = time.Since(report.StartedAt).Milliseconds()
	if err != nil {
		report.Error = err.Error()
	}
	if r.runs != nil {
		r.runs.Save(report)
	}
	return report, err
}

func (r *Runner) run(ctx context.Context, report *RunReport) error {
	datafile, ok, err := PickOldestPending(r.cfg.UnprocessedFolder)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("INFO: there is no datafile to process")
		report.Skipped = true
		return nil
	}
	report.File = datafile
	log.Printf("INFO: processing %s", datafile)

	input, err := frame.ReadFile(datafile)
	if err != nil {
		return err
	}

	locations, err := cams.LocationsFromTable(input)
	if err != nil {
		return err
	}
	report.Locations = len(locations)

	combined, err := cams.FetchAll(ctx, r.client, locations, cams.FetchParams{
		Start:         r.cfg.Start(),
		End:           r.cfg.End(),
		Email:         r.cfg.Email,
		SkyType:       r.cfg.SkyType,
		TimeStep:      r.cfg.TimeStep,
		TimeReference: r.cfg.TimeReference,
	})
	if err != nil {
		return err
	}
	report.Rows = combined.NumRows()

	if combined.NumRows() == 0 {
		return ErrEmptyResult
	}

	output, err := validate.Run(combined, r.cfg.Start(), r.cfg.End(), r.cfg.TimeStep, r.cfg.ResultsFolder)
	if err != nil {
		return err
	}
	report.Output = output

	// The input only leaves the queue once its result is safely persisted.
	if err := Archive(datafile, r.cfg.ProcessedFolder); err != nil {
		return err
	}

	log.Printf("INFO: run %s completed: %d locations, %d rows, output %s",
		report.ID, report.Locations, report.Rows, output)
	return nil
}
