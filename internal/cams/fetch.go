package cams

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/pvops/cams-pipeline/internal/frame"
)

// FetchParams are the request parameters shared by every location in a batch.
type FetchParams struct {
	Start         time.Time
	End           time.Time
	Email         string
	SkyType       string
	TimeStep      string
	TimeReference string
}

// FetchAll fetches CAMS data for every location in input order and combines
// the per-location tables into one. Each returned table is tagged with the
// location's Latitude and Longitude as its first two columns before being
// appended.
//
// The loop is a single sequential pass: the first failing location aborts the
// whole batch and no partial result is returned.
func FetchAll(ctx context.Context, client Fetcher, locations []Location, p FetchParams) (*frame.Table, error) {
	combined := frame.New()

	for i, loc := range locations {
		data, _, err := client.Get(ctx, Request{
			Latitude:      loc.Latitude,
			Longitude:     loc.Longitude,
			Start:         p.Start,
			End:           p.End,
			Email:         p.Email,
			Identifier:    p.SkyType,
			TimeStep:      p.TimeStep,
			TimeReference: p.TimeReference,
		})
		if err != nil {
			log.Printf("ERROR: fetch failed for record %d (latitude %v, longitude %v): %v",
				i, loc.Latitude, loc.Longitude, err)
			return nil, fmt.Errorf("fetch record %d (latitude %v, longitude %v): %w",
				i, loc.Latitude, loc.Longitude, err)
		}

		data.InsertConst(0, LatitudeColumn, formatCoord(loc.Latitude))
		data.InsertConst(1, LongitudeColumn, formatCoord(loc.Longitude))
		combined.Append(data)
	}

	return combined, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
