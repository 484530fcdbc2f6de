package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/observation"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/storage"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// Outcomes hold decrypted health summaries, so values are sealed with
// the node DEK before they touch disk.

func encodeOutcome(o observation.Outcome) ([]byte, error) {
	plain, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return storage.Encrypt(plain)
}

func decodeOutcome(sealed []byte) (observation.Outcome, error) {
	var o observation.Outcome
	plain, err := storage.Decrypt(sealed)
	if err != nil {
		return o, err
	}
	err = json.Unmarshal(plain, &o)
	return o, err
}

// GetOutcome loads the outcome for a record. Records that were never
// submitted (including id 0) report found=false.
func (s *State) GetOutcome(id ids.RecordID) (observation.Outcome, bool, error) {
	var o observation.Outcome
	data, err := s.store.Get(outcomeKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return o, false, nil
	}
	if err != nil {
		return o, false, err
	}
	o, err = decodeOutcome(data)
	if err != nil {
		return o, false, fmt.Errorf("corrupt outcome %d: %w", id, err)
	}
	return o, true, nil
}

// CompleteOutcome writes Outcome{summary, true} and the result-ready
// feed entry in one batch. The caller has already checked the
// idempotence guard; this transition is applied at most once per record.
func (s *State) CompleteOutcome(id ids.RecordID, summary string, at time.Time) (notify.Notification, error) {
	sealed, err := encodeOutcome(observation.Outcome{Summary: summary, Handled: true})
	if err != nil {
		return notify.Notification{}, err
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(outcomeKey(id)), sealed)
	n, err := s.stageFeedEntry(batch, notify.KindResultReady, id, 0, at)
	if err != nil {
		return notify.Notification{}, err
	}
	if err := s.store.WriteBatch(batch); err != nil {
		return notify.Notification{}, fmt.Errorf("complete outcome %d: %w", id, err)
	}
	return n, nil
}
