package weather

import (
	"math"
)

// Temperature readings outside this window are treated as provider
// anomalies and flag the record rather than rejecting it.
const (
	minPlausibleTempC = -90.0
	maxPlausibleTempC = 60.0
)

// Normalize maps a raw provider payload onto a Record and applies the
// data-quality policy:
//
//   - required fields missing (city, or every temperature reading) reject
//     the record with a *ValidationError;
//   - advisory violations (humidity or cloudiness outside [0,100], wind
//     direction outside [0,360), negative wind speed or visibility,
//     implausible or non-finite temperatures) keep the offending values
//     untouched and mark the record IsValid=false.
//
// Normalize is pure: the same payload always yields the same record.
// CollectedAt is left zero for the store to assign at insert time.
func Normalize(raw CurrentConditions, sourceCity string) (Record, error) {
	city := raw.Name
	if city == "" {
		city = sourceCity
	}
	if city == "" {
		return Record{}, &ValidationError{Reason: "city name missing from payload and request"}
	}

	if raw.Main.Temp == nil && raw.Main.FeelsLike == nil && raw.Main.TempMin == nil && raw.Main.TempMax == nil {
		return Record{}, &ValidationError{City: city, Reason: "no temperature readings present"}
	}

	rec := Record{
		City:           city,
		Latitude:       roundPtr(raw.Coord.Lat),
		Longitude:      roundPtr(raw.Coord.Lon),
		Temperature:    roundPtr(raw.Main.Temp),
		FeelsLike:      roundPtr(raw.Main.FeelsLike),
		TempMin:        roundPtr(raw.Main.TempMin),
		TempMax:        roundPtr(raw.Main.TempMax),
		Pressure:       raw.Main.Pressure,
		Humidity:       raw.Main.Humidity,
		WindSpeed:      roundPtr(raw.Wind.Speed),
		WindDirection:  raw.Wind.Deg,
		Cloudiness:     raw.Clouds.All,
		Visibility:     raw.Visibility,
		APITimestamp:   raw.Dt,
		TimezoneOffset: raw.Timezone,
		DataSource:     SourceOpenWeatherMap,
		IsValid:        true,
	}

	if raw.Sys.Country != "" {
		cc := raw.Sys.Country
		rec.CountryCode = &cc
	}

	// Condition strings pass through verbatim; the provider reports a
	// list and only the first entry is meaningful for current conditions.
	if len(raw.Weather) > 0 {
		w := raw.Weather[0]
		rec.WeatherMain = &w.Main
		rec.WeatherDescription = &w.Description
		rec.WeatherIcon = &w.Icon
	}

	rec.IsValid = checkAdvisory(&rec)
	return rec, nil
}

// checkAdvisory runs the advisory invariants. Values are never clamped
// or repaired; a violating record is stored as-is so it stays inspectable.
func checkAdvisory(rec *Record) bool {
	for _, t := range []*float64{rec.Temperature, rec.FeelsLike, rec.TempMin, rec.TempMax} {
		if t == nil {
			continue
		}
		if !finite(*t) || *t < minPlausibleTempC || *t > maxPlausibleTempC {
			return false
		}
	}
	for _, f := range []*float64{rec.Latitude, rec.Longitude} {
		if f != nil && !finite(*f) {
			return false
		}
	}
	if rec.Humidity != nil && (*rec.Humidity < 0 || *rec.Humidity > 100) {
		return false
	}
	if rec.Cloudiness != nil && (*rec.Cloudiness < 0 || *rec.Cloudiness > 100) {
		return false
	}
	if rec.WindDirection != nil && (*rec.WindDirection < 0 || *rec.WindDirection >= 360) {
		return false
	}
	if rec.WindSpeed != nil && (!finite(*rec.WindSpeed) || *rec.WindSpeed < 0) {
		return false
	}
	if rec.Visibility != nil && *rec.Visibility < 0 {
		return false
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// roundPtr rounds a decimal reading to 2 places, preserving absence.
func roundPtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	if !finite(*f) {
		v := *f
		return &v
	}
	v := math.Round(*f*100) / 100
	return &v
}
