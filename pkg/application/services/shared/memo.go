package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"

	"github.com/vsinha/fcrecon/pkg/domain/repositories"
)

// memoVersion changes whenever a normalizer changes its output for the same
// input, so that stale datasets are not served
const memoVersion = "v1"

// DatasetMemo wraps a MemoRepository. Storage failures are logged and treated
// as misses so that a broken store never changes a result. A nil repository
// disables memoization.
type DatasetMemo struct {
	repo   repositories.MemoRepository
	logger *log.Logger
}

// NewDatasetMemo creates a memo over repo. A nil logger discards messages.
func NewDatasetMemo(repo repositories.MemoRepository, logger *log.Logger) *DatasetMemo {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &DatasetMemo{repo: repo, logger: logger}
}

// MemoKey hashes a dataset kind and the parts that identify its inputs
func MemoKey(kind string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(memoVersion))
	h.Write([]byte{0})
	h.Write([]byte(kind))
	for _, part := range parts {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Load decodes the dataset stored under key into v and reports a hit
func (m *DatasetMemo) Load(ctx context.Context, key string, v interface{}) bool {
	if m == nil || m.repo == nil {
		return false
	}
	payload, ok, err := m.repo.GetDataset(ctx, key)
	if err != nil {
		m.logger.Printf("[memo] read %s failed: %v", key[:12], err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		m.logger.Printf("[memo] decode %s failed: %v", key[:12], err)
		return false
	}
	return true
}

// Store encodes v under key
func (m *DatasetMemo) Store(ctx context.Context, key, kind string, v interface{}) {
	if m == nil || m.repo == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		m.logger.Printf("[memo] encode %s dataset failed: %v", kind, err)
		return
	}
	if err := m.repo.PutDataset(ctx, key, kind, payload); err != nil {
		m.logger.Printf("[memo] write %s dataset failed: %v", kind, err)
	}
}
