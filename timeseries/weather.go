package timeseries

import (
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"s1-forestry/tableio"
)

const (
	// DefaultCutoff is the time of day the station reports its daily totals.
	DefaultCutoff = "09:05:00"

	cutoffLayout = "15:04:05"
)

// Weather columns that can be joined onto the time series.
const (
	Rain        = "rain"
	Humidity    = "humidity"
	Temperature = "temperature"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// observation is one row of the raw station export. Values stay text until
// the columns in use are parsed.
type observation struct {
	Timestamp   string `csv:"timestamp"`
	Rain        string `csv:"rain"`
	Humidity    string `csv:"humidity"`
	Temperature string `csv:"temperature"`
}

// Daily is the weather of one calendar date. Columns not loaded are nil.
type Daily struct {
	Rain        *float64
	Humidity    *float64
	Temperature *float64
}

// Weather maps a calendar date to its daily observation.
type Weather map[string]Daily

// ReadWeather loads a station export and keeps, for every calendar date, the
// last observation taken at or before cutoff (HH:MM:SS). Only the named
// columns are kept; no columns means all of them.
func ReadWeather(path string, columns []string, cutoff string) (Weather, error) {
	var raw []observation
	if err := tableio.ReadCSVLowerHeader(path, &raw); err != nil {
		return nil, err
	}
	w, err := dailyWeather(raw, columns, cutoff)
	if err != nil {
		return nil, fmt.Errorf("timeseries: weather %s: %w", path, err)
	}
	logrus.Infof("Loaded weather for %d days from %s", len(w), path)
	return w, nil
}

func dailyWeather(raw []observation, columns []string, cutoff string) (Weather, error) {
	limit, err := time.Parse(cutoffLayout, cutoff)
	if err != nil {
		return nil, fmt.Errorf("cutoff %q: %w", cutoff, err)
	}
	limitOfDay := sinceMidnight(limit)
	for _, c := range columns {
		if !slices.Contains([]string{Rain, Humidity, Temperature}, c) {
			return nil, fmt.Errorf("unknown column %q", c)
		}
	}
	keep := func(c string) bool {
		return len(columns) == 0 || slices.Contains(columns, c)
	}

	w := make(Weather)
	latest := make(map[string]time.Time)
	for i, obs := range raw {
		ts, err := parseTimestamp(obs.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if sinceMidnight(ts) > limitOfDay {
			continue
		}
		date := tableio.NewDate(ts).String()
		if prev, ok := latest[date]; ok && ts.Before(prev) {
			continue
		}

		var d Daily
		for _, f := range []struct {
			name string
			text string
			dst  **float64
		}{
			{Rain, obs.Rain, &d.Rain},
			{Humidity, obs.Humidity, &d.Humidity},
			{Temperature, obs.Temperature, &d.Temperature},
		} {
			if !keep(f.name) {
				continue
			}
			v, err := tableio.ParseOptionalFloat(f.text)
			if err != nil {
				return nil, fmt.Errorf("row %d %s: %w", i+1, f.name, err)
			}
			*f.dst = v
		}
		latest[date] = ts
		w[date] = d
	}
	return w, nil
}

func parseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
}

func sinceMidnight(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// Join attaches the observation of each row's date. Rows of dates without
// an observation keep a nil Weather.
func (w Weather) Join(rows []Row) {
	missing := 0
	for i := range rows {
		d, ok := w[rows[i].Date.String()]
		if !ok {
			missing++
			continue
		}
		rows[i].Weather = &d
	}
	if missing > 0 {
		logrus.Warnf("%d of %d rows have no weather observation", missing, len(rows))
	}
}
