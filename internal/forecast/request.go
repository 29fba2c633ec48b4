// Package forecast turns raw front-end input into the canonical parameter set
// sent to the TJWeather API.
package forecast

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"tjweather/internal/location"
	"tjweather/internal/types"
)

const (
	DefaultDays       = 3
	DefaultHours      = 0
	DefaultTimezone   = 8
	DefaultResolution = "1h"
	DefaultGrid       = "1"
)

// Temporal resolutions understood by the API. Build passes any other value
// through unchanged.
const (
	Resolution15Min = "15min"
	Resolution1H    = "1h"
)

// Input is the unvalidated request as typed by a user or sent by a tool call.
// Numbers are carried as text so both front-ends share one parsing policy.
type Input struct {
	Location   string
	Fields     string
	Days       string
	Hours      string
	Resolution string
	Timezone   string
	Grid       string
	Download   bool
	Filename   string
}

// Request is the normalized parameter set for one API call.
type Request struct {
	Location   types.Coords
	Fields     string
	Days       int
	Hours      int
	Resolution string
	Timezone   int
	Grid       string
	Download   bool
	Filename   string

	rawDays  string
	rawHours string
}

// Build normalizes in. Malformed days, hours or timezone never fail the
// request; they fall back to their defaults. Parsed values, negative ones
// included, are not range checked. Validation of location and
// fields is expected to have run already; an unparsable location is still
// reported.
func Build(in Input) (Request, error) {
	coords, err := location.Parse(in.Location)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Location:   coords,
		Fields:     in.Fields,
		Days:       parseInt(in.Days, DefaultDays),
		Hours:      parseInt(in.Hours, DefaultHours),
		Resolution: in.Resolution,
		Timezone:   parseInt(in.Timezone, DefaultTimezone),
		Grid:       in.Grid,
		Download:   in.Download,
		Filename:   in.Filename,
		rawDays:    in.Days,
		rawHours:   in.Hours,
	}
	if req.Resolution == "" {
		req.Resolution = DefaultResolution
	}
	if req.Grid == "" {
		req.Grid = DefaultGrid
	}
	return req, nil
}

// Params returns the upstream query parameters, without the API key.
func (r Request) Params() url.Values {
	q := url.Values{}
	q.Set("loc", r.Location.String())
	q.Set("fields", r.Fields)
	q.Set("fcst_days", strconv.Itoa(r.Days))
	q.Set("fcst_hours", strconv.Itoa(r.Hours))
	q.Set("t_res", r.Resolution)
	q.Set("tz", strconv.Itoa(r.Timezone))
	q.Set("grid", r.Grid)
	if r.Download {
		q.Set("download", "true")
		if r.Filename != "" {
			q.Set("filename", r.Filename)
		}
	}
	return q
}

// OutputFile is the synthesized local name of a download. Filename is only
// sent upstream and never changes it.
func (r Request) OutputFile(now time.Time) string {
	days := r.rawDays
	if days == "" {
		days = strconv.Itoa(r.Days)
	}
	hours := r.rawHours
	if hours == "" {
		hours = strconv.Itoa(r.Hours)
	}
	return DownloadFilename(r.Location, days, hours, now)
}

// DownloadFilename builds weather_<lon>_<lat>_d<days>_h<hours>_<timestamp>.nc.
// The timestamp is the UTC time down to seconds with ':' and '.' replaced, so
// existing scripts can keep matching on the name.
func DownloadFilename(c types.Coords, days, hours string, now time.Time) string {
	var b strings.Builder
	b.WriteString("weather_")
	b.WriteString(c.LongitudeText())
	b.WriteString("_")
	b.WriteString(c.LatitudeText())
	b.WriteString("_d")
	b.WriteString(days)
	b.WriteString("_h")
	b.WriteString(hours)
	b.WriteString("_")
	b.WriteString(now.UTC().Format("2006-01-02T15-04-05"))
	b.WriteString(".nc")
	return b.String()
}

// FormatNumber renders a JSON number the way it is written back into Input.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseInt reads the leading integer of s: optional whitespace, an optional
// sign, then digits. Anything after the digits is ignored. def is returned
// when there are no digits.
func parseInt(s string, def int) int {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return def
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return def
	}
	return n
}
