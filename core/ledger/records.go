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

// AppendRecord assigns the next record id and commits, in one batch:
// the record, its initial outcome {"", false} and the record-submitted
// feed entry. Ids are dense from 1.
func (s *State) AppendRecord(activity, sleep ids.Handle, at time.Time) (observation.EncryptedRecord, notify.Notification, error) {
	var rec observation.EncryptedRecord

	last, err := s.counter(keyRecordSeq)
	if err != nil {
		return rec, notify.Notification{}, err
	}
	rec = observation.EncryptedRecord{
		ID:             ids.RecordID(last + 1),
		ActivityHandle: activity,
		SleepHandle:    sleep,
		CreatedAt:      at,
	}

	recBytes, err := json.Marshal(rec)
	if err != nil {
		return rec, notify.Notification{}, err
	}
	outcomeBytes, err := encodeOutcome(observation.Outcome{})
	if err != nil {
		return rec, notify.Notification{}, err
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(recordKey(rec.ID)), recBytes)
	batch.Put([]byte(outcomeKey(rec.ID)), outcomeBytes)
	stageCounter(batch, keyRecordSeq, uint64(rec.ID))
	n, err := s.stageFeedEntry(batch, notify.KindRecordSubmitted, rec.ID, 0, at)
	if err != nil {
		return rec, notify.Notification{}, err
	}
	if err := s.store.WriteBatch(batch); err != nil {
		return rec, notify.Notification{}, fmt.Errorf("append record: %w", err)
	}
	return rec, n, nil
}

// GetRecord loads a record by id. Absent ids (including 0) report
// found=false with no error.
func (s *State) GetRecord(id ids.RecordID) (observation.EncryptedRecord, bool, error) {
	var rec observation.EncryptedRecord
	data, err := s.store.Get(recordKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, false, fmt.Errorf("corrupt record %d: %w", id, err)
	}
	return rec, true, nil
}

// RecordCount returns the highest assigned record id.
func (s *State) RecordCount() (uint64, error) {
	return s.counter(keyRecordSeq)
}

// AppendAlert assigns the next alert id and commits the alert plus the
// alert-submitted feed entry in one batch. Alerts have no outcome row.
func (s *State) AppendAlert(payload ids.Handle, at time.Time) (observation.EncryptedAlert, notify.Notification, error) {
	var alert observation.EncryptedAlert

	last, err := s.counter(keyAlertSeq)
	if err != nil {
		return alert, notify.Notification{}, err
	}
	alert = observation.EncryptedAlert{
		ID:            ids.AlertID(last + 1),
		PayloadHandle: payload,
		CreatedAt:     at,
	}

	alertBytes, err := json.Marshal(alert)
	if err != nil {
		return alert, notify.Notification{}, err
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(alertKey(alert.ID)), alertBytes)
	stageCounter(batch, keyAlertSeq, uint64(alert.ID))
	n, err := s.stageFeedEntry(batch, notify.KindAlertSubmitted, 0, alert.ID, at)
	if err != nil {
		return alert, notify.Notification{}, err
	}
	if err := s.store.WriteBatch(batch); err != nil {
		return alert, notify.Notification{}, fmt.Errorf("append alert: %w", err)
	}
	return alert, n, nil
}

// GetAlert loads an alert by id. Absent ids report found=false.
func (s *State) GetAlert(id ids.AlertID) (observation.EncryptedAlert, bool, error) {
	var alert observation.EncryptedAlert
	data, err := s.store.Get(alertKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return alert, false, nil
	}
	if err != nil {
		return alert, false, err
	}
	if err := json.Unmarshal(data, &alert); err != nil {
		return alert, false, fmt.Errorf("corrupt alert %d: %w", id, err)
	}
	return alert, true, nil
}

// AlertCount returns the highest assigned alert id.
func (s *State) AlertCount() (uint64, error) {
	return s.counter(keyAlertSeq)
}
