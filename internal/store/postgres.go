package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"weather-pipeline/internal/weather"
)

// ErrNotFound is returned when no data is available for a given city.
var ErrNotFound = errors.New("no weather data for city")

// PostgresStore persists weather records in PostgreSQL. Each insert is
// its own transaction; rows are never updated after insertion.
type PostgresStore struct {
	db *gorm.DB
}

// Open connects to PostgreSQL and migrates the weather_records table,
// including the (city, collected_at DESC) and collected_at DESC indexes.
func Open(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(&weather.Record{}); err != nil {
		return nil, fmt.Errorf("migrate weather_records: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// New wraps an existing gorm connection. Used by tests.
func New(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert writes a single record atomically and returns its id.
// CollectedAt is assigned here when the caller left it zero.
func (s *PostgresStore) Insert(ctx context.Context, rec *weather.Record) (uint, error) {
	if rec.City == "" {
		return 0, errors.New("record city must not be empty")
	}
	if rec.CollectedAt.IsZero() {
		rec.CollectedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, fmt.Errorf("insert weather record: %w", err)
	}
	return rec.ID, nil
}

// Latest returns the newest record for every distinct city.
func (s *PostgresStore) Latest(ctx context.Context) ([]weather.Record, error) {
	var recs []weather.Record
	err := s.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (city) * FROM weather_records ORDER BY city, collected_at DESC`).
		Scan(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("query latest records: %w", err)
	}
	return recs, nil
}

// LatestFor returns the record with the maximum collected_at for one city.
func (s *PostgresStore) LatestFor(ctx context.Context, city string) (weather.Record, error) {
	var rec weather.Record
	err := s.db.WithContext(ctx).
		Where("city = ?", city).
		Order("collected_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return weather.Record{}, ErrNotFound
	}
	if err != nil {
		return weather.Record{}, fmt.Errorf("query latest record for %s: %w", city, err)
	}
	return rec, nil
}

// History returns records for a city within [since, until], ascending by
// collection time. An empty window yields an empty slice, not an error.
func (s *PostgresStore) History(ctx context.Context, city string, since, until time.Time) ([]weather.Record, error) {
	var recs []weather.Record
	err := s.db.WithContext(ctx).
		Where("city = ? AND collected_at >= ? AND collected_at <= ?", city, since, until).
		Order("collected_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", city, err)
	}
	return recs, nil
}

// Statistics aggregates a city's records over the trailing day window:
// record count plus average/min/max temperature and average humidity,
// pressure and wind speed. Averages are nil when the window is empty.
func (s *PostgresStore) Statistics(ctx context.Context, city string, days int) (weather.Statistics, error) {
	if days <= 0 {
		return weather.Statistics{}, fmt.Errorf("days must be positive, got %d", days)
	}

	since := time.Now().UTC().AddDate(0, 0, -days)

	var stats weather.Statistics
	err := s.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) AS record_count,
			AVG(temperature) AS avg_temp,
			MIN(temperature) AS min_temp,
			MAX(temperature) AS max_temp,
			AVG(humidity) AS avg_humidity,
			AVG(pressure) AS avg_pressure,
			AVG(wind_speed) AS avg_wind_speed
		FROM weather_records
		WHERE city = ? AND collected_at >= ?`, city, since).
		Scan(&stats).Error
	if err != nil {
		return weather.Statistics{}, fmt.Errorf("query statistics for %s: %w", city, err)
	}

	for _, v := range []*float64{stats.AvgTemp, stats.MinTemp, stats.MaxTemp, stats.AvgHumidity, stats.AvgPressure, stats.AvgWindSpeed} {
		round2(v)
	}
	return stats, nil
}

// round2 rounds an aggregate to 2 decimal places in place, keeping nil absent.
func round2(f *float64) {
	if f == nil {
		return
	}
	*f = math.Round(*f*100) / 100
}

// Cleanup deletes all records collected more than daysToKeep days ago and
// returns the number of rows removed. Re-running with nothing eligible
// deletes zero rows.
func (s *PostgresStore) Cleanup(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep < 0 {
		return 0, fmt.Errorf("daysToKeep must not be negative, got %d", daysToKeep)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysToKeep)
	tx := s.db.WithContext(ctx).
		Where("collected_at < ?", cutoff).
		Delete(&weather.Record{})
	if tx.Error != nil {
		return 0, fmt.Errorf("cleanup weather records: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}
