package cams

import (
	"fmt"
	"strconv"

	"github.com/pvops/cams-pipeline/internal/frame"
)

// Column names the input files must carry. Matching is case-sensitive.
const (
	LatitudeColumn  = "Latitude"
	LongitudeColumn = "Longitude"
)

// Location is one geographic point to fetch irradiance data for. Identity is
// the (latitude, longitude) pair.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Key returns a canonical string key for this location.
func (l Location) Key() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + ":" +
		strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// LocationsFromTable extracts the Latitude/Longitude columns of a chunk file
// into locations, preserving row order.
func LocationsFromTable(t *frame.Table) ([]Location, error) {
	latIdx := t.ColumnIndex(LatitudeColumn)
	lonIdx := t.ColumnIndex(LongitudeColumn)
	if latIdx == -1 || lonIdx == -1 {
		return nil, fmt.Errorf("input table must have %s and %s columns, got %v",
			LatitudeColumn, LongitudeColumn, t.Columns)
	}

	locations := make([]Location, 0, t.NumRows())
	for i, row := range t.Rows {
		lat, err := strconv.ParseFloat(row[latIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid latitude %q: %w", i, row[latIdx], err)
		}
		lon, err := strconv.ParseFloat(row[lonIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid longitude %q: %w", i, row[lonIdx], err)
		}
		locations = append(locations, Location{Latitude: lat, Longitude: lon})
	}
	return locations, nil
}
