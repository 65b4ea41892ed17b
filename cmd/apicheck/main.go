// Command apicheck performs a one-shot connectivity test against the
// weather provider: it fetches current conditions for one city with the
// configured credential and reports what came back. Exit code 1 on any
// failure, making it usable from provisioning scripts.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"weather-pipeline/internal/config"
	"weather-pipeline/internal/weather"
	"weather-pipeline/internal/weather/providers"
)

func main() {
	_ = godotenv.Load()

	cityFlag := flag.String("city", "", "city to test against (default: first configured city)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	city := *cityFlag
	if city == "" {
		city = cfg.Cities[0]
	}

	client := providers.NewOpenWeatherClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.OpenWeatherAPIKey, cfg.BaseURL)

	fmt.Printf("testing provider connectivity for %q...\n", city)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	raw, err := client.Fetch(ctx, city, cfg.Units)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		os.Exit(1)
	}

	rec, err := weather.Normalize(raw, city)
	if err != nil {
		fmt.Fprintf(os.Stderr, "payload failed validation: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("connection OK")
	fmt.Printf("  location:    %s", rec.City)
	if rec.CountryCode != nil {
		fmt.Printf(", %s", *rec.CountryCode)
	}
	fmt.Println()
	printFloat("temperature", rec.Temperature, "°C")
	printFloat("feels like", rec.FeelsLike, "°C")
	printInt("humidity", rec.Humidity, "%")
	printInt("pressure", rec.Pressure, " hPa")
	printFloat("wind speed", rec.WindSpeed, " m/s")
	if rec.WeatherMain != nil && rec.WeatherDescription != nil {
		fmt.Printf("  conditions:  %s - %s\n", *rec.WeatherMain, *rec.WeatherDescription)
	}
	if rec.APITimestamp != nil {
		fmt.Printf("  observed at: %s\n", time.Unix(*rec.APITimestamp, 0).UTC().Format(time.RFC3339))
	}
	if !rec.IsValid {
		fmt.Println("  warning: payload failed advisory quality checks")
	}
}

func printFloat(label string, v *float64, unit string) {
	if v == nil {
		return
	}
	fmt.Printf("  %-12s %.2f%s\n", label+":", *v, unit)
}

func printInt(label string, v *int, unit string) {
	if v == nil {
		return
	}
	fmt.Printf("  %-12s %d%s\n", label+":", *v, unit)
}
