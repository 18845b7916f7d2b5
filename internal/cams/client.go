package cams

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pvops/cams-pipeline/internal/frame"
)

// Metadata holds the key/value header lines the CAMS service prepends to a
// response (elevation, summarization notes, column descriptions and so on).
type Metadata map[string]string

// Request describes one per-location call to the CAMS radiation service.
type Request struct {
	Latitude  float64
	Longitude float64

	// Altitude in meters. When nil the service derives it from its own
	// digital elevation model.
	Altitude *float64

	Start time.Time
	End   time.Time

	// Email is the account registered with the SoDa service.
	Email string

	// Identifier selects the dataset: "mcclear" or "cams_radiation".
	Identifier string

	TimeStep      string // 1min, 15min, 1h, 1d, 1M
	TimeReference string // UT or TST
	Verbose       bool
}

// summarizations maps the pipeline time steps onto the ISO 8601 duration
// codes the WPS endpoint expects.
var summarizations = map[string]string{
	"1min":  "PT01M",
	"15min": "PT15M",
	"1h":    "PT01H",
	"1d":    "P01D",
	"1M":    "P01M",
}

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// Fetcher is the contract the fetch loop depends on; satisfied by Client and
// by fakes in tests.
type Fetcher interface {
	Get(ctx context.Context, req Request) (*frame.Table, Metadata, error)
}

// Client talks to a SoDa CAMS radiation WPS endpoint. Calls are single-shot:
// there is no retry or backoff, only a circuit breaker that refuses further
// calls after the service has been failing.
type Client struct {
	client  *http.Client
	server  string
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client against the given server. The server may be a
// bare host name ("api.soda-solardata.com") or a full base URL; bare hosts
// are reached over https.
func NewClient(client *http.Client, server string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cams",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		client:  client,
		server:  server,
		circuit: cb,
	}
}

// Get performs one WPS Execute call and parses the CSV payload into a table
// plus the response metadata. Network, auth and service errors are returned
// as-is for the caller to propagate.
func (c *Client) Get(ctx context.Context, req Request) (*frame.Table, Metadata, error) {
	if c.client == nil {
		return nil, nil, errNoHTTPClient
	}

	u, err := c.buildURL(req)
	if err != nil {
		return nil, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(httpReq)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("cams service returned status %d: %s",
				resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected result type from circuit breaker")
	}

	return ParseResponse(body)
}

func (c *Client) buildURL(req Request) (string, error) {
	server := c.server
	if server == "" {
		return "", fmt.Errorf("cams server is not configured")
	}

	summarization, ok := summarizations[req.TimeStep]
	if !ok {
		return "", fmt.Errorf("unrecognized time step %q", req.TimeStep)
	}

	identifier := req.Identifier
	if identifier != "mcclear" && identifier != "cams_radiation" {
		return "", fmt.Errorf("unrecognized sky type %q", identifier)
	}

	altitude := -999.0
	if req.Altitude != nil {
		altitude = *req.Altitude
	}

	// The service expects the '@' in the account name double-encoded
	// inside the DataInputs block. One layer is applied here; Encode()
	// on the query values supplies the second, so the wire bytes carry
	// %2540.
	username := strings.ReplaceAll(req.Email, "@", "%40")

	inputs := []string{
		"latitude=" + strconv.FormatFloat(req.Latitude, 'f', -1, 64),
		"longitude=" + strconv.FormatFloat(req.Longitude, 'f', -1, 64),
		"altitude=" + strconv.FormatFloat(altitude, 'f', -1, 64),
		"date_begin=" + req.Start.Format("2006-01-02"),
		"date_end=" + req.End.Format("2006-01-02"),
		"time_ref=" + req.TimeReference,
		"summarization=" + summarization,
		"username=" + username,
		"verbose=" + strconv.FormatBool(req.Verbose),
	}

	values := url.Values{}
	values.Set("Service", "WPS")
	values.Set("Request", "Execute")
	values.Set("Identifier", "get_"+identifier)
	values.Set("version", "2.0.0")
	values.Set("DataInputs", strings.Join(inputs, ";"))
	values.Set("RawDataOutput", "irradiation_csv")

	base := server
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/service/wps?%s", strings.TrimRight(base, "/"), values.Encode()), nil
}

// ParseResponse decodes a CAMS CSV payload. Header lines start with '#';
// "key: value" header lines become metadata and the final header line names
// the semicolon-separated data columns.
func ParseResponse(body []byte) (*frame.Table, Metadata, error) {
	meta := make(Metadata)
	var columns []string
	var rows [][]string

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			comment := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if key, value, found := strings.Cut(comment, ":"); found {
				meta[strings.TrimSpace(key)] = strings.TrimSpace(value)
			} else if strings.Contains(comment, ";") {
				// Last comment line before the data carries the
				// column names.
				columns = splitRecord(comment)
			}
			continue
		}

		if len(columns) == 0 {
			return nil, nil, fmt.Errorf("cams response has data before a column header line")
		}
		rows = append(rows, splitRecord(line))
	}

	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("cams response contains no column header line")
	}

	table := frame.New(columns...)
	for _, row := range rows {
		table.AppendRow(row)
	}
	return table, meta, nil
}

func splitRecord(line string) []string {
	parts := strings.Split(line, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
