package weather

import "time"

// Location is the fixed point the forecast is requested for.
type Location struct {
	Lon float64 `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
}

// HourlyRecord is one row of the hourly table.
// Date and Hour come from the synthetic clock, not from the upstream timestamps.
type HourlyRecord struct {
	Date        string  `json:"date"`
	Hour        string  `json:"hour"`
	Temperature float64 `json:"temperature"`
	WillRain    bool    `json:"willRain"`
}

// Column labels used by the rendered table, in row field order.
const (
	ColumnDate        = "Datum"
	ColumnHour        = "Timme"
	ColumnTemperature = "Temperatur (°C)"
	ColumnWillRain    = "Regn (True/False)"
)

// Columns returns the display labels in field order.
func Columns() []string {
	return []string{ColumnDate, ColumnHour, ColumnTemperature, ColumnWillRain}
}

// Table is the ordered output of a transform. Rows are in emission order.
type Table []HourlyRecord

// TransformStats counts the non-fatal policies applied during a transform.
type TransformStats struct {
	Considered    int // entries looked at, at most MaxHourlyRows
	Skipped       int // entries dropped for a missing temperature or pcat
	RainDefaulted int // rows whose pcat value could not be read as a number
}

// ProbeStatus is the outcome of the last upstream reachability check.
type ProbeStatus struct {
	OK        bool      `json:"ok"`
	CheckedAt time.Time `json:"checkedAt"`
	Error     string    `json:"error,omitempty"`
}
