// Package ledger is the persistent monitoring state: encrypted records
// and alerts, their outcomes, open request correlations and the
// append-only notification feed, all kept in one LevelDB keyspace.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/storage"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// Key layout. Numeric ids are zero-padded so prefix iteration yields
// entries in id order.
const (
	keyRecordSeq = "seq:record"
	keyAlertSeq  = "seq:alert"
	keyFeedSeq   = "seq:feed"

	prefixRecord     = "record:"
	prefixAlert      = "alert:"
	prefixOutcome    = "outcome:"
	prefixFeed       = "feed:"
	prefixAnomalyReq = "pending:anomaly:"
	prefixAlertReq   = "pending:alertpath:"
)

func recordKey(id ids.RecordID) string  { return fmt.Sprintf("%s%020d", prefixRecord, uint64(id)) }
func alertKey(id ids.AlertID) string    { return fmt.Sprintf("%s%020d", prefixAlert, uint64(id)) }
func outcomeKey(id ids.RecordID) string { return fmt.Sprintf("%s%020d", prefixOutcome, uint64(id)) }
func feedKey(seq uint64) string         { return fmt.Sprintf("%s%020d", prefixFeed, seq) }

// State wraps the storage backend with the typed stores of the node.
// Callers serialize access; State itself does no locking.
type State struct {
	store *storage.Storage
}

func NewState(store *storage.Storage) *State {
	return &State{store: store}
}

// Store exposes the backing storage for scans and dev tooling.
func (s *State) Store() *storage.Storage {
	return s.store
}

// counter reads a sequence counter; a key that was never written reads
// as 0, so the first assigned id is 1.
func (s *State) counter(key string) (uint64, error) {
	data, err := s.store.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, fmt.Errorf("corrupt counter %s: %w", key, err)
	}
	return n, nil
}

func stageCounter(batch *leveldb.Batch, key string, n uint64) {
	data, _ := json.Marshal(n)
	batch.Put([]byte(key), data)
}
