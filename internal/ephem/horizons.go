package ephem

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/litescript/ls-skylight/internal/astro"
	"github.com/litescript/ls-skylight/internal/version"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// MoonTarget is the Horizons body ID of the Moon.
	MoonTarget = 301

	// HorizonsCacheTTL is how long a fetched row answers repeat queries.
	HorizonsCacheTTL = 5 * time.Minute

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 10 * time.Second

	maxCacheEntries = 256
)

// Column indexes of the numeric values in a row. Geocentric rows carry
// QUANTITIES 2,10; topocentric rows carry 2,4,10.
const (
	colRA = iota
	colDec
	colGeoIllum
)

const (
	colAz = iota + 2
	colEl
	colTopoIllum
)

// HorizonsProvider queries JPL Horizons for the Moon. Every query is
// resolved to the whole minute and answered from a short-lived cache when
// possible, so the three calls made per ephemeris cost at most two requests.
type HorizonsProvider struct {
	client  *http.Client
	baseURL string
	cache   *lru.Cache // queryKey -> cachedRow
}

// queryKey identifies a request: the minute and, for topocentric rows, the
// rounded site coordinate.
type queryKey struct {
	minute int64
	site   string
}

type cachedRow struct {
	row       horizonsRow
	fetchedAt time.Time
}

// horizonsRow is one line of the ephemeris table.
type horizonsRow struct {
	Time   time.Time
	Values []float64
}

// NewHorizonsProvider creates a new Horizons API client.
func NewHorizonsProvider() *HorizonsProvider {
	return NewHorizonsProviderWithClient(HorizonsAPIURL, &http.Client{Timeout: RequestTimeout})
}

// NewHorizonsProviderWithClient targets another endpoint, such as a mirror
// or a test server.
func NewHorizonsProviderWithClient(baseURL string, client *http.Client) *HorizonsProvider {
	cache, _ := lru.New(maxCacheEntries) // only fails for a non-positive size
	return &HorizonsProvider{
		client:  client,
		baseURL: baseURL,
		cache:   cache,
	}
}

// Name implements Provider.
func (p *HorizonsProvider) Name() string {
	return "horizons"
}

// MoonEquatorial implements Provider.
func (p *HorizonsProvider) MoonEquatorial(t time.Time) (astro.EquatorialPosition, error) {
	row, err := p.row(t, nil, colGeoIllum+1)
	if err != nil {
		return astro.EquatorialPosition{}, err
	}
	return astro.EquatorialPosition{
		RightAscensionRad: row.Values[colRA] * math.Pi / 180,
		DeclinationRad:    row.Values[colDec] * math.Pi / 180,
	}, nil
}

// MoonHorizontal implements Provider. Horizons reports apparent topocentric
// azimuth and elevation, refraction off.
func (p *HorizonsProvider) MoonHorizontal(t time.Time, obs astro.Observer) (astro.HorizontalPosition, error) {
	row, err := p.row(t, &obs, colTopoIllum+1)
	if err != nil {
		return astro.HorizontalPosition{}, err
	}
	el := row.Values[colEl]
	return astro.HorizontalPosition{
		AltitudeDeg:    el,
		AzimuthDeg:     row.Values[colAz],
		AzimuthDefined: math.Cos(el*math.Pi/180) >= astro.DegenerateProjection,
	}, nil
}

// MoonIllumination implements Provider.
func (p *HorizonsProvider) MoonIllumination(t time.Time) (float64, error) {
	row, err := p.row(t, nil, colGeoIllum+1)
	if err != nil {
		return 0, err
	}
	return row.Values[colGeoIllum] / 100, nil
}

// row returns the cached or freshly fetched row for t, requiring at least
// want numeric columns.
func (p *HorizonsProvider) row(t time.Time, obs *astro.Observer, want int) (horizonsRow, error) {
	t = t.UTC().Truncate(time.Minute)
	key := queryKey{minute: t.Unix() / 60}
	if obs != nil {
		key.site = siteCoord(*obs)
	}

	if v, ok := p.cache.Get(key); ok {
		if cached := v.(cachedRow); time.Since(cached.fetchedAt) < HorizonsCacheTTL {
			return cached.row, nil
		}
	}

	rows, err := p.query(t, obs)
	if err != nil {
		return horizonsRow{}, fmt.Errorf("horizons: %w: %w", ErrProviderUnavailable, err)
	}
	if len(rows) == 0 {
		return horizonsRow{}, fmt.Errorf("horizons: %w: no data returned for %s", ErrProviderUnavailable, formatHorizonsTime(t))
	}
	r := rows[0]
	if len(r.Values) < want {
		return horizonsRow{}, fmt.Errorf("horizons: %w: row has %d values, want %d", ErrProviderUnavailable, len(r.Values), want)
	}

	p.cache.Add(key, cachedRow{row: r, fetchedAt: time.Now()})

	return r, nil
}

// InvalidateCache drops every cached row.
func (p *HorizonsProvider) InvalidateCache() {
	p.cache.Purge()
}

// query makes a request to the Horizons API. A nil observer asks for the
// geocentric view.
func (p *HorizonsProvider) query(t time.Time, obs *astro.Observer) ([]horizonsRow, error) {
	// Build request parameters - values must be quoted with single quotes
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", MoonTarget))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	params.Set("ANG_FORMAT", "DEG")
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t.Add(time.Minute))))
	params.Set("STEP_SIZE", "'1 m'")
	if obs == nil {
		params.Set("CENTER", "'500@399'")
		params.Set("QUANTITIES", "'2,10'") // apparent RA/Dec, illuminated %
	} else {
		params.Set("CENTER", "'coord@399'")
		params.Set("COORD_TYPE", "GEODETIC")
		params.Set("SITE_COORD", fmt.Sprintf("'%s'", siteCoord(*obs)))
		params.Set("QUANTITIES", "'2,4,10'") // + apparent Az/El
	}

	reqURL := p.baseURL + "?" + params.Encode()

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "ls-skylight/"+version.Version)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parseHorizonsResponse(body)
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// parseHorizonsResponse parses the Horizons JSON response.
func parseHorizonsResponse(body []byte) ([]horizonsRow, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("api error: %s", resp.Error)
	}

	// The actual ephemeris data is in resp.Result as a text blob
	return parseEphemerisTable(resp.Result)
}

// parseEphemerisTable extracts rows from the Horizons text output.
func parseEphemerisTable(result string) ([]horizonsRow, error) {
	// Find the data section between $$SOE and $$EOE markers
	soeIdx := strings.Index(result, "$$SOE")
	eoeIdx := strings.Index(result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, fmt.Errorf("could not find ephemeris data markers")
	}

	var rows []horizonsRow
	for _, line := range strings.Split(result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		row, err := parseEphemerisLine(line)
		if err != nil {
			continue // Skip unparseable lines
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// parseEphemerisLine parses a single ephemeris data line:
//
//	2024-Apr-08 18:00 *m  17.123456  7.654321  123.456789  45.678901  0.0123
//
// Fields: date, time, optional solar/lunar presence flags, then the numeric
// quantities in request order.
func parseEphemerisLine(line string) (horizonsRow, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return horizonsRow{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	t, err := parseHorizonsDateTime(fields[0] + " " + fields[1])
	if err != nil {
		return horizonsRow{}, err
	}

	// Flag fields (*, *m, Cm, Nm, Am, ...) are not numeric and are skipped.
	var values []float64
	for _, f := range fields[2:] {
		val, err := strconv.ParseFloat(f, 64)
		if err != nil {
			if len(values) > 0 {
				break
			}
			continue
		}
		values = append(values, val)
	}

	if len(values) == 0 {
		return horizonsRow{}, fmt.Errorf("no numeric values")
	}

	return horizonsRow{Time: t, Values: values}, nil
}

// parseHorizonsDateTime parses Horizons date format like "2025-Dec-05 00:00".
func parseHorizonsDateTime(s string) (time.Time, error) {
	t, err := time.Parse("2006-Jan-02 15:04", s)
	if err == nil {
		return t.UTC(), nil
	}

	// Try with seconds
	t, err = time.Parse("2006-Jan-02 15:04:05", s)
	if err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// formatHorizonsTime formats a time for Horizons API.
func formatHorizonsTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// siteCoord formats an observer as Horizons' east-longitude, latitude,
// altitude triple. Rounding to 1e-4° also makes nearby observers share cache
// entries.
func siteCoord(obs astro.Observer) string {
	return fmt.Sprintf("%.4f,%.4f,0", obs.LonDeg, obs.LatDeg)
}
