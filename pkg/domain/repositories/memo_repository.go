package repositories

import "context"

// Dataset kinds stored in the memo table.
const (
	DatasetForecast    = "forecast"
	DatasetConsumption = "consumption"
	DatasetMerged      = "merged"
	DatasetMapping     = "mapping"
)

// MemoRepository stores derived datasets keyed by a content hash of their
// inputs. A hit must be byte-for-byte what recomputation would produce.
type MemoRepository interface {
	GetDataset(ctx context.Context, key string) ([]byte, bool, error)
	PutDataset(ctx context.Context, key, kind string, payload []byte) error
}
