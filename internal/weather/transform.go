package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxHourlyRows bounds the number of forecast entries considered: one day at
// hourly granularity.
const MaxHourlyRows = 24

const (
	temperatureUnit       = "Cel"
	precipitationCategory = "pcat"
)

var errMissingKey = errors.New("missing key")

type parameterKind int

const (
	parameterOther parameterKind = iota
	parameterTemperature
	parameterPrecipitation
)

// parameter is one element of an entry's "parameters" array. Fields are kept
// raw: a non-string unit or name simply does not match, and values is only
// decoded for the parameters that are actually read.
type parameter struct {
	Unit   json.RawMessage `json:"unit"`
	Name   json.RawMessage `json:"name"`
	Values json.RawMessage `json:"values"`
}

func (p parameter) kind() parameterKind {
	switch {
	case markerIs(p.Unit, temperatureUnit):
		return parameterTemperature
	case markerIs(p.Name, precipitationCategory):
		return parameterPrecipitation
	default:
		return parameterOther
	}
}

// firstValue returns the first element of values, or nil when values is
// absent, not an array, empty, or starts with null.
func (p parameter) firstValue() json.RawMessage {
	if len(p.Values) == 0 {
		return nil
	}
	var values []json.RawMessage
	if err := json.Unmarshal(p.Values, &values); err != nil {
		return nil
	}
	if len(values) == 0 || isNull(values[0]) {
		return nil
	}
	return values[0]
}

type forecastEntry struct {
	Parameters json.RawMessage `json:"parameters"`
}

// Transform turns a raw forecast payload into the hourly table. Rows are
// labelled by a synthetic clock that starts at the wall-clock hour of start
// and advances one hour per emitted row.
//
// Invalid JSON fails with *ParseError and a payload without a usable
// "timeSeries" array fails with *StructureError; in both cases no partial
// table is returned. Entries lacking a temperature or pcat value are skipped
// without consuming an hour, and a pcat value that is not a number counts as 0.
func Transform(raw []byte, start time.Time) (Table, TransformStats, error) {
	var stats TransformStats

	entries, err := decodeTimeSeries(raw)
	if err != nil {
		return nil, stats, err
	}
	if len(entries) > MaxHourlyRows {
		entries = entries[:MaxHourlyRows]
	}

	clock := newSyntheticClock(start)
	table := make(Table, 0, len(entries))

	for i, rawEntry := range entries {
		params, err := decodeParameters(i, rawEntry)
		if err != nil {
			return nil, stats, err
		}
		stats.Considered++

		temp, rain := scanParameters(params)
		if temp == nil || rain == nil {
			stats.Skipped++
			continue
		}

		temperature, ok := readTemperature(temp.firstValue())
		if !ok {
			stats.Skipped++
			continue
		}
		rainValue := rain.firstValue()
		if rainValue == nil {
			stats.Skipped++
			continue
		}

		category, ok := coercePrecipitation(rainValue)
		if !ok {
			stats.RainDefaulted++
		}

		table = append(table, HourlyRecord{
			Date:        clock.date(),
			Hour:        clock.hour(),
			Temperature: temperature,
			WillRain:    category >= 1.0,
		})
		clock.advance()
	}

	return table, stats, nil
}

func decodeTimeSeries(raw []byte) ([]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &ParseError{Err: err}
		}
		return nil, &StructureError{Path: "$", Err: err}
	}

	ts, ok := doc["timeSeries"]
	if !ok || isNull(ts) {
		return nil, &StructureError{Path: "timeSeries", Err: errMissingKey}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(ts, &entries); err != nil {
		return nil, &StructureError{Path: "timeSeries", Err: err}
	}
	return entries, nil
}

func decodeParameters(index int, raw json.RawMessage) ([]parameter, error) {
	path := fmt.Sprintf("timeSeries[%d].parameters", index)

	var entry forecastEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, &StructureError{Path: fmt.Sprintf("timeSeries[%d]", index), Err: err}
	}
	if len(entry.Parameters) == 0 || isNull(entry.Parameters) {
		return nil, &StructureError{Path: path, Err: errMissingKey}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(entry.Parameters, &elems); err != nil {
		return nil, &StructureError{Path: path, Err: err}
	}

	// An element that is not an object is never matched, so it decodes to
	// the zero parameter instead of failing the entry.
	params := make([]parameter, len(elems))
	for i, elem := range elems {
		_ = json.Unmarshal(elem, &params[i])
	}
	return params, nil
}

// scanParameters walks params once and returns the first temperature and the
// first precipitation-category parameter. Either may be nil.
func scanParameters(params []parameter) (temp, rain *parameter) {
	for i := range params {
		switch params[i].kind() {
		case parameterTemperature:
			if temp == nil {
				temp = &params[i]
			}
		case parameterPrecipitation:
			if rain == nil {
				rain = &params[i]
			}
		}
		if temp != nil && rain != nil {
			break
		}
	}
	return temp, rain
}

// readTemperature accepts only a JSON number; anything else counts as missing.
func readTemperature(raw json.RawMessage) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	v, err := decodeScalar(raw)
	if err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	return parseFloat(n.String())
}

// coercePrecipitation reads a pcat value as a float. The second result is
// false when the value could not be read and 0 was substituted.
func coercePrecipitation(raw json.RawMessage) (float64, bool) {
	v, err := decodeScalar(raw)
	if err != nil {
		return 0, false
	}

	switch x := v.(type) {
	case json.Number:
		return parseFloat(x.String())
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		return parseFloat(strings.TrimSpace(x))
	default:
		return 0, false
	}
}

// decodeScalar decodes raw keeping numbers as json.Number, so that a literal
// outside the float64 range still reaches parseFloat.
func decodeScalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// parseFloat treats an out-of-range value as ±Inf rather than a failure.
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func markerIs(raw json.RawMessage, want string) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	return json.Unmarshal(raw, &s) == nil && s == want
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// syntheticClock labels rows in wall-clock hours. It runs in UTC internally so
// that adding an hour never skips or repeats a label across DST changes.
type syntheticClock struct {
	t time.Time
}

func newSyntheticClock(start time.Time) syntheticClock {
	y, m, d := start.Date()
	return syntheticClock{t: time.Date(y, m, d, start.Hour(), 0, 0, 0, time.UTC)}
}

func (c syntheticClock) date() string { return c.t.Format("2006-01-02") }

func (c syntheticClock) hour() string { return c.t.Format("15") }

func (c *syntheticClock) advance() { c.t = c.t.Add(time.Hour) }
