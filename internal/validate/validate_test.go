package validate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvops/cams-pipeline/internal/frame"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpectedRows(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		timeStep  string
		locations int
		want      int
	}{
		{"two locations one day hourly", date(2023, 1, 1), date(2023, 1, 1), "1h", 2, 48},
		{"three locations three months monthly", date(2023, 1, 15), date(2023, 3, 15), "1M", 3, 9},
		{"one location one day minutely", date(2023, 1, 1), date(2023, 1, 1), "1min", 1, 1440},
		{"one location one day quarter-hourly", date(2023, 1, 1), date(2023, 1, 1), "15min", 1, 96},
		{"hourly across a week", date(2023, 1, 1), date(2023, 1, 7), "1h", 1, 168},
		{"monthly across a year boundary", date(2022, 11, 1), date(2023, 2, 1), "1M", 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpectedRows(tt.start, tt.end, tt.timeStep, tt.locations)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpectedRowsRejectsDailyStep(t *testing.T) {
	// 1d is accepted by the CLI but has no minute mapping here; it must
	// fail loudly rather than miscount.
	_, err := ExpectedRows(date(2023, 1, 1), date(2023, 1, 2), "1d", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"1d"`)
}

// combinedTable builds a tagged result table with rows evenly spread over
// the given locations.
func combinedTable(rowsPerLocation int, coords ...[2]string) *frame.Table {
	table := frame.New("Latitude", "Longitude", "Clear sky GHI")
	for _, c := range coords {
		for i := 0; i < rowsPerLocation; i++ {
			table.AppendRow([]string{c[0], c[1], fmt.Sprintf("%d.0", i)})
		}
	}
	return table
}

func TestDistinctLocationsKeysOnBothCoordinates(t *testing.T) {
	// Two locations sharing a latitude still count as two.
	table := combinedTable(3, [2]string{"52.52", "13.405"}, [2]string{"52.52", "2.35"})
	assert.Equal(t, 2, DistinctLocations(table))

	assert.Equal(t, 0, DistinctLocations(frame.New("A", "B")))
}

func TestRunSavesOnMatchingCount(t *testing.T) {
	resultsDir := t.TempDir()

	// 2 locations x 24 hourly rows for a single day.
	table := combinedTable(24, [2]string{"52.52", "13.405"}, [2]string{"48.85", "2.35"})

	out, err := Run(table, date(2023, 1, 1), date(2023, 1, 1), "1h", resultsDir)
	require.NoError(t, err)

	wantName := fmt.Sprintf("processed_cams_data_%s.csv", time.Now().Format("2006-01-02"))
	assert.Equal(t, filepath.Join(resultsDir, wantName), out)

	saved, err := frame.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, saved.Columns)
	assert.Equal(t, table.Rows, saved.Rows)
}

func TestRunRejectsCountMismatch(t *testing.T) {
	resultsDir := t.TempDir()

	// 23 rows per location where 24 are expected.
	table := combinedTable(23, [2]string{"52.52", "13.405"}, [2]string{"48.85", "2.35"})

	_, err := Run(table, date(2023, 1, 1), date(2023, 1, 1), "1h", resultsDir)
	require.Error(t, err)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 48, mismatch.Expected)
	assert.Equal(t, 46, mismatch.Actual)

	// Nothing is written on a failed validation.
	entries, readErr := os.ReadDir(resultsDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
