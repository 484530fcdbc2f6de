package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/oracle"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/storage"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// Correlations map an oracle request token to the domain id it was
// minted for. Entries are written once and never deleted or rewritten:
// a token keeps resolving after its result is applied, which is what
// lets a replayed callback be classified as already-handled instead of
// unknown. The anomaly and alert paths use separate namespaces.

// RequestKind says which callback path a correlation belongs to.
type RequestKind string

const (
	RequestAnomaly RequestKind = "anomaly"
	RequestAlert   RequestKind = "alert"
)

// Request is one registered correlation, as listed for scans and the
// dev inspection endpoint. Completed is derived from the record's
// outcome; alert correlations have no completion state and always
// report false.
type Request struct {
	Token     oracle.Token `json:"requestId"`
	Kind      RequestKind  `json:"kind"`
	RecordID  ids.RecordID `json:"recordId,omitempty"`
	AlertID   ids.AlertID  `json:"alertId,omitempty"`
	Completed bool         `json:"completed"`
}

func anomalyReqKey(token oracle.Token) string { return prefixAnomalyReq + string(token) }
func alertReqKey(token oracle.Token) string   { return prefixAlertReq + string(token) }

// RegisterAnomalyRequest persists token→record and the
// decryption-requested feed entry in one batch. Registering a token
// twice is a protocol violation and fails without writing.
func (s *State) RegisterAnomalyRequest(token oracle.Token, id ids.RecordID, at time.Time) (notify.Notification, error) {
	exists, err := s.store.Has(anomalyReqKey(token))
	if err != nil {
		return notify.Notification{}, err
	}
	if exists {
		return notify.Notification{}, fmt.Errorf("request token %s already registered", token)
	}

	idBytes, err := json.Marshal(id)
	if err != nil {
		return notify.Notification{}, err
	}
	batch := new(leveldb.Batch)
	batch.Put([]byte(anomalyReqKey(token)), idBytes)
	n, err := s.stageFeedEntry(batch, notify.KindDecryptionRequested, id, 0, at)
	if err != nil {
		return notify.Notification{}, err
	}
	if err := s.store.WriteBatch(batch); err != nil {
		return notify.Notification{}, fmt.Errorf("register anomaly request: %w", err)
	}
	return n, nil
}

// ResolveAnomalyRequest looks a token up in the anomaly namespace.
func (s *State) ResolveAnomalyRequest(token oracle.Token) (ids.RecordID, bool, error) {
	data, err := s.store.Get(anomalyReqKey(token))
	if errors.Is(err, storage.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var id ids.RecordID
	if err := json.Unmarshal(data, &id); err != nil {
		return 0, false, fmt.Errorf("corrupt correlation %s: %w", token, err)
	}
	return id, true, nil
}

// RegisterAlertRequest persists token→alert and the
// alert-decryption-requested feed entry in one batch.
func (s *State) RegisterAlertRequest(token oracle.Token, id ids.AlertID, at time.Time) (notify.Notification, error) {
	exists, err := s.store.Has(alertReqKey(token))
	if err != nil {
		return notify.Notification{}, err
	}
	if exists {
		return notify.Notification{}, fmt.Errorf("request token %s already registered", token)
	}

	idBytes, err := json.Marshal(id)
	if err != nil {
		return notify.Notification{}, err
	}
	batch := new(leveldb.Batch)
	batch.Put([]byte(alertReqKey(token)), idBytes)
	n, err := s.stageFeedEntry(batch, notify.KindAlertDecryptionRequested, 0, id, at)
	if err != nil {
		return notify.Notification{}, err
	}
	if err := s.store.WriteBatch(batch); err != nil {
		return notify.Notification{}, fmt.Errorf("register alert request: %w", err)
	}
	return n, nil
}

// ResolveAlertRequest looks a token up in the alert namespace.
func (s *State) ResolveAlertRequest(token oracle.Token) (ids.AlertID, bool, error) {
	data, err := s.store.Get(alertReqKey(token))
	if errors.Is(err, storage.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var id ids.AlertID
	if err := json.Unmarshal(data, &id); err != nil {
		return 0, false, fmt.Errorf("corrupt correlation %s: %w", token, err)
	}
	return id, true, nil
}

// ListRequests returns every registered correlation with its completion
// state. Anomaly entries are completed once their record's outcome is
// handled. Alert requests are repeatable and never marked completed.
func (s *State) ListRequests() ([]Request, error) {
	var reqs []Request

	iter := s.store.PrefixIterator(prefixAnomalyReq)
	for iter.Next() {
		token := oracle.Token(iter.Key()[len(prefixAnomalyReq):])
		var id ids.RecordID
		if err := json.Unmarshal(iter.Value(), &id); err != nil {
			iter.Release()
			return nil, fmt.Errorf("corrupt correlation %s: %w", token, err)
		}
		outcome, _, err := s.GetOutcome(id)
		if err != nil {
			iter.Release()
			return nil, err
		}
		reqs = append(reqs, Request{
			Token:     token,
			Kind:      RequestAnomaly,
			RecordID:  id,
			Completed: outcome.Handled,
		})
	}
	if err := iter.Error(); err != nil {
		iter.Release()
		return nil, err
	}
	iter.Release()

	iter = s.store.PrefixIterator(prefixAlertReq)
	defer iter.Release()
	for iter.Next() {
		token := oracle.Token(iter.Key()[len(prefixAlertReq):])
		var id ids.AlertID
		if err := json.Unmarshal(iter.Value(), &id); err != nil {
			return nil, fmt.Errorf("corrupt correlation %s: %w", token, err)
		}
		reqs = append(reqs, Request{Token: token, Kind: RequestAlert, AlertID: id})
	}
	return reqs, iter.Error()
}
