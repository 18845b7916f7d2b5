// Package validate checks a combined CAMS result set against the row count
// the configured date range and time step imply, and persists it into the
// results folder when the counts agree.
package validate

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/pvops/cams-pipeline/internal/cams"
	"github.com/pvops/cams-pipeline/internal/frame"
)

// stepMinutes maps sub-daily time steps to their length in minutes. The
// monthly step is handled by calendar arithmetic instead, and the daily step
// has no mapping here: the service accepts it but this validator cannot
// price it, so it is rejected explicitly in ExpectedRows.
var stepMinutes = map[string]int{
	"1min":  1,
	"15min": 15,
	"1h":    60,
}

// MismatchError reports that the combined table's row count does not match
// the expected count. It is fatal for the run; nothing is saved.
type MismatchError struct {
	Expected int
	Actual   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected row count: %d, but found %d rows", e.Expected, e.Actual)
}

// ExpectedRows computes how many rows a complete result set must have for
// the inclusive date range, time step and number of distinct locations.
//
// Monthly steps count calendar months spanned inclusively. Sub-daily steps
// divide the minutes between start-of-start_date and start-of-the-day-after
// end_date by the step length, discarding any remainder.
func ExpectedRows(start, end time.Time, timeStep string, locations int) (int, error) {
	if timeStep == "1M" {
		months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
		return months * locations, nil
	}

	step, ok := stepMinutes[timeStep]
	if !ok {
		return 0, fmt.Errorf("no minute mapping for time step %q", timeStep)
	}

	minutes := int(end.AddDate(0, 0, 1).Sub(start).Minutes())
	return (minutes / step) * locations, nil
}

// DistinctLocations counts the distinct (Latitude, Longitude) pairs present
// in the combined table. Tables without both coordinate columns count zero.
func DistinctLocations(t *frame.Table) int {
	latIdx := t.ColumnIndex(cams.LatitudeColumn)
	lonIdx := t.ColumnIndex(cams.LongitudeColumn)
	if latIdx == -1 || lonIdx == -1 {
		return 0
	}

	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		seen[row[latIdx]+";"+row[lonIdx]] = struct{}{}
	}
	return len(seen)
}

// Run validates the combined table and, on success, writes it to the results
// folder as processed_cams_data_<YYYY-MM-DD>.csv (named by the current
// date). It returns the saved path. On a count mismatch it returns a
// *MismatchError and writes nothing.
func Run(t *frame.Table, start, end time.Time, timeStep, resultsFolder string) (string, error) {
	locations := DistinctLocations(t)

	expected, err := ExpectedRows(start, end, timeStep, locations)
	if err != nil {
		return "", err
	}

	if t.NumRows() != expected {
		return "", &MismatchError{Expected: expected, Actual: t.NumRows()}
	}

	name := fmt.Sprintf("processed_cams_data_%s.csv", time.Now().Format("2006-01-02"))
	outPath := filepath.Join(resultsFolder, name)
	if err := t.WriteFile(outPath); err != nil {
		return "", err
	}

	log.Printf("INFO: expected row count: %d found rows: %d", expected, t.NumRows())
	log.Printf("INFO: output validation successful, saved to %s", outPath)
	return outPath, nil
}
