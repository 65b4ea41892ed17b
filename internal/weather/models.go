package weather

import (
	"time"
)

// Units selects the unit system requested from the provider.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// SourceOpenWeatherMap is the provenance tag stored with every record
// ingested from the OpenWeatherMap current-conditions endpoint.
const SourceOpenWeatherMap = "openweathermap"

// Record is one immutable weather observation for one city at one
// collection time. Optional measurements are pointers so that a field
// the provider omitted stays absent instead of becoming zero.
//
// Rows are insert-only; the only delete path is retention cleanup.
type Record struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// CollectedAt is assigned by the store at insert time. Both
	// supporting indexes are keyed on it: (city, collected_at DESC)
	// for per-city lookups and collected_at DESC alone for retention.
	CollectedAt time.Time `gorm:"not null;index:idx_weather_records_collected_at,sort:desc;index:idx_weather_records_city_time,priority:2,sort:desc" json:"collected_at"`

	City        string   `gorm:"not null;index:idx_weather_records_city_time,priority:1" json:"city"`
	CountryCode *string  `json:"country_code,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
	FeelsLike   *float64 `json:"feels_like,omitempty"`
	TempMin     *float64 `json:"temp_min,omitempty"`
	TempMax     *float64 `json:"temp_max,omitempty"`

	Pressure *int `json:"pressure,omitempty"`
	Humidity *int `json:"humidity,omitempty"`

	WeatherMain        *string `json:"weather_main,omitempty"`
	WeatherDescription *string `json:"weather_description,omitempty"`
	WeatherIcon        *string `json:"weather_icon,omitempty"`

	WindSpeed     *float64 `json:"wind_speed,omitempty"`
	WindDirection *int     `json:"wind_direction,omitempty"`

	Cloudiness *int `json:"cloudiness,omitempty"`
	Visibility *int `json:"visibility,omitempty"`

	APITimestamp   *int64 `json:"api_timestamp,omitempty"`
	TimezoneOffset *int   `json:"timezone_offset,omitempty"`

	DataSource string `gorm:"not null" json:"data_source"`
	IsValid    bool   `gorm:"not null" json:"is_valid"`
}

// TableName keeps the table name stable regardless of gorm's pluralization rules.
func (Record) TableName() string {
	return "weather_records"
}

// Statistics summarizes a city's records over a trailing day window.
// Aggregates are nil when no rows fall inside the window.
type Statistics struct {
	RecordCount  int64    `json:"record_count"`
	AvgTemp      *float64 `json:"avg_temp"`
	MinTemp      *float64 `json:"min_temp"`
	MaxTemp      *float64 `json:"max_temp"`
	AvgHumidity  *float64 `json:"avg_humidity"`
	AvgPressure  *float64 `json:"avg_pressure"`
	AvgWindSpeed *float64 `json:"avg_wind_speed"`
}

// CurrentConditions mirrors the subset of the OpenWeatherMap
// current-conditions response the pipeline consumes. Pointer fields
// distinguish "absent in the payload" from a genuine zero.
type CurrentConditions struct {
	Name string `json:"name"`

	Coord struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"coord"`

	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Pressure  *int     `json:"pressure"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`

	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`

	Wind struct {
		Speed *float64 `json:"speed"`
		Deg   *int     `json:"deg"`
	} `json:"wind"`

	Clouds struct {
		All *int `json:"all"`
	} `json:"clouds"`

	Visibility *int `json:"visibility"`

	Dt       *int64 `json:"dt"`
	Timezone *int   `json:"timezone"`

	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}
