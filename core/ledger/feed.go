package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// stageFeedEntry stages the next feed entry and the advanced feed
// counter into batch, returning the entry. The caller commits the batch
// alongside its own writes, so feed sequence numbers stay dense even
// when a mutation is rejected.
func (s *State) stageFeedEntry(batch *leveldb.Batch, kind notify.Kind, recID ids.RecordID, alertID ids.AlertID, at time.Time) (notify.Notification, error) {
	last, err := s.counter(keyFeedSeq)
	if err != nil {
		return notify.Notification{}, err
	}
	n := notify.Notification{
		Seq:      last + 1,
		Kind:     kind,
		RecordID: recID,
		AlertID:  alertID,
		At:       at,
	}
	entryBytes, err := json.Marshal(n)
	if err != nil {
		return notify.Notification{}, err
	}
	batch.Put([]byte(feedKey(n.Seq)), entryBytes)
	stageCounter(batch, keyFeedSeq, n.Seq)
	return n, nil
}

// AppendAlertDecrypted appends the alert-decrypted feed entry. Nothing
// else is written: the alert path keeps no outcome and the decoded text
// is never persisted, so repeat deliveries append again.
func (s *State) AppendAlertDecrypted(id ids.AlertID, at time.Time) (notify.Notification, error) {
	batch := new(leveldb.Batch)
	n, err := s.stageFeedEntry(batch, notify.KindAlertDecrypted, 0, id, at)
	if err != nil {
		return notify.Notification{}, err
	}
	if err := s.store.WriteBatch(batch); err != nil {
		return notify.Notification{}, fmt.Errorf("append alert-decrypted: %w", err)
	}
	return n, nil
}

// FeedLength returns the sequence number of the newest feed entry.
func (s *State) FeedLength() (uint64, error) {
	return s.counter(keyFeedSeq)
}

// FeedSince returns up to limit entries with Seq > after, in order.
// limit <= 0 means no cap.
func (s *State) FeedSince(after uint64, limit int) ([]notify.Notification, error) {
	var entries []notify.Notification

	iter := s.store.PrefixIterator(prefixFeed)
	defer iter.Release()
	for iter.Next() {
		var n notify.Notification
		if err := json.Unmarshal(iter.Value(), &n); err != nil {
			return nil, fmt.Errorf("corrupt feed entry %s: %w", iter.Key(), err)
		}
		if n.Seq <= after {
			continue
		}
		entries = append(entries, n)
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, iter.Error()
}
