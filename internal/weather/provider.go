package weather

import (
	"context"
	"time"
)

// Fetcher abstracts the weather data source. Fetch returns the raw
// current-conditions payload for one city or a classified error
// (see errors.go for the kinds).
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, city string, units Units) (CurrentConditions, error)
}

// Store is the contract the Postgres repository satisfies. Records are
// immutable once inserted; Cleanup is the only delete path.
type Store interface {
	Insert(ctx context.Context, rec *Record) (uint, error)
	Latest(ctx context.Context) ([]Record, error)
	LatestFor(ctx context.Context, city string) (Record, error)
	History(ctx context.Context, city string, since, until time.Time) ([]Record, error)
	Statistics(ctx context.Context, city string, days int) (Statistics, error)
	Cleanup(ctx context.Context, daysToKeep int) (int64, error)
}
