package weather

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// torontoJSON is a captured OpenWeatherMap current-conditions response.
const torontoJSON = `{
	"coord": {"lon": -79.42, "lat": 43.7},
	"weather": [{"id": 804, "main": "Clouds", "description": "overcast clouds", "icon": "04d"}],
	"main": {"temp": 7.2, "feels_like": 4.3, "temp_min": 5.8, "temp_max": 8.9, "pressure": 1013, "humidity": 75},
	"wind": {"speed": 4.5, "deg": 250},
	"clouds": {"all": 90},
	"visibility": 10000,
	"dt": 1705776000,
	"sys": {"country": "CA"},
	"timezone": -18000,
	"name": "Toronto"
}`

func samplePayload(t *testing.T) CurrentConditions {
	t.Helper()
	var cc CurrentConditions
	require.NoError(t, json.Unmarshal([]byte(torontoJSON), &cc))
	return cc
}

func TestNormalizeMapsSamplePayload(t *testing.T) {
	rec, err := Normalize(samplePayload(t), "Toronto")
	require.NoError(t, err)

	assert.Equal(t, "Toronto", rec.City)
	require.NotNil(t, rec.CountryCode)
	assert.Equal(t, "CA", *rec.CountryCode)
	require.NotNil(t, rec.Temperature)
	assert.Equal(t, 7.2, *rec.Temperature)
	require.NotNil(t, rec.Humidity)
	assert.Equal(t, 75, *rec.Humidity)
	require.NotNil(t, rec.Pressure)
	assert.Equal(t, 1013, *rec.Pressure)
	require.NotNil(t, rec.WeatherDescription)
	assert.Equal(t, "overcast clouds", *rec.WeatherDescription)
	require.NotNil(t, rec.WindDirection)
	assert.Equal(t, 250, *rec.WindDirection)
	require.NotNil(t, rec.APITimestamp)
	assert.Equal(t, int64(1705776000), *rec.APITimestamp)
	require.NotNil(t, rec.TimezoneOffset)
	assert.Equal(t, -18000, *rec.TimezoneOffset)
	assert.Equal(t, SourceOpenWeatherMap, rec.DataSource)
	assert.True(t, rec.IsValid)

	// CollectedAt is the store's job, not the transformer's.
	assert.True(t, rec.CollectedAt.IsZero())
}

func TestNormalizeIsDeterministic(t *testing.T) {
	raw := samplePayload(t)

	first, err := Normalize(raw, "Toronto")
	require.NoError(t, err)
	second, err := Normalize(raw, "Toronto")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeRejectsMissingCity(t *testing.T) {
	raw := samplePayload(t)
	raw.Name = ""

	_, err := Normalize(raw, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestNormalizeFallsBackToRequestedCity(t *testing.T) {
	raw := samplePayload(t)
	raw.Name = ""

	rec, err := Normalize(raw, "Toronto")
	require.NoError(t, err)
	assert.Equal(t, "Toronto", rec.City)
}

func TestNormalizeRejectsWithoutTemperatures(t *testing.T) {
	raw := samplePayload(t)
	raw.Main.Temp = nil
	raw.Main.FeelsLike = nil
	raw.Main.TempMin = nil
	raw.Main.TempMax = nil

	_, err := Normalize(raw, "Toronto")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Toronto", verr.City)
}

func TestNormalizeFlagsAdvisoryViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CurrentConditions)
	}{
		{"humidity above 100", func(cc *CurrentConditions) { v := 150; cc.Main.Humidity = &v }},
		{"humidity negative", func(cc *CurrentConditions) { v := -5; cc.Main.Humidity = &v }},
		{"cloudiness above 100", func(cc *CurrentConditions) { v := 120; cc.Clouds.All = &v }},
		{"wind direction 360", func(cc *CurrentConditions) { v := 360; cc.Wind.Deg = &v }},
		{"wind direction negative", func(cc *CurrentConditions) { v := -10; cc.Wind.Deg = &v }},
		{"negative wind speed", func(cc *CurrentConditions) { v := -1.0; cc.Wind.Speed = &v }},
		{"negative visibility", func(cc *CurrentConditions) { v := -50; cc.Visibility = &v }},
		{"implausible temperature", func(cc *CurrentConditions) { v := 100.0; cc.Main.Temp = &v }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := samplePayload(t)
			tc.mutate(&raw)

			rec, err := Normalize(raw, "Toronto")
			require.NoError(t, err, "advisory violations must not reject the record")
			assert.False(t, rec.IsValid)
		})
	}
}

func TestNormalizeNeverClampsValues(t *testing.T) {
	raw := samplePayload(t)
	humidity := 150
	raw.Main.Humidity = &humidity

	rec, err := Normalize(raw, "Toronto")
	require.NoError(t, err)
	assert.False(t, rec.IsValid)
	require.NotNil(t, rec.Humidity)
	assert.Equal(t, 150, *rec.Humidity, "out-of-range value must be stored untouched")
}

func TestNormalizeAbsentFieldsStayAbsent(t *testing.T) {
	var raw CurrentConditions
	raw.Name = "Toronto"
	temp := 5.0
	raw.Main.Temp = &temp

	rec, err := Normalize(raw, "Toronto")
	require.NoError(t, err)

	assert.Nil(t, rec.CountryCode)
	assert.Nil(t, rec.Latitude)
	assert.Nil(t, rec.Longitude)
	assert.Nil(t, rec.FeelsLike)
	assert.Nil(t, rec.Humidity)
	assert.Nil(t, rec.Pressure)
	assert.Nil(t, rec.WindSpeed)
	assert.Nil(t, rec.WindDirection)
	assert.Nil(t, rec.Cloudiness)
	assert.Nil(t, rec.Visibility)
	assert.Nil(t, rec.WeatherMain)
	assert.True(t, rec.IsValid)
}

func TestNormalizeRoundsDecimals(t *testing.T) {
	raw := samplePayload(t)
	temp := 7.248
	raw.Main.Temp = &temp
	speed := 4.567
	raw.Wind.Speed = &speed

	rec, err := Normalize(raw, "Toronto")
	require.NoError(t, err)
	require.NotNil(t, rec.Temperature)
	assert.Equal(t, 7.25, *rec.Temperature)
	require.NotNil(t, rec.WindSpeed)
	assert.Equal(t, 4.57, *rec.WindSpeed)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{City: "Toronto", Reason: "no temperature readings present"}
	assert.Contains(t, err.Error(), "Toronto")

	var target *ValidationError
	assert.True(t, errors.As(err, &target))
}
