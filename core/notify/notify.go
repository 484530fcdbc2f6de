package notify

import (
	"log"
	"time"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// Kind identifies which protocol event a notification announces.
type Kind string

const (
	KindRecordSubmitted          Kind = "record-submitted"
	KindAlertSubmitted           Kind = "alert-submitted"
	KindDecryptionRequested      Kind = "decryption-requested"
	KindResultReady              Kind = "result-ready"
	KindAlertDecryptionRequested Kind = "alert-decryption-requested"
	KindAlertDecrypted           Kind = "alert-decrypted"
)

// Notification is one entry of the append-only feed. Seq is assigned on
// append, dense from 1, and totally orders all entries. RecordID and
// AlertID are set according to Kind; the unused one stays 0.
type Notification struct {
	Seq      uint64       `json:"seq"`
	Kind     Kind         `json:"kind"`
	RecordID ids.RecordID `json:"recordId,omitempty"`
	AlertID  ids.AlertID  `json:"alertId,omitempty"`
	At       time.Time    `json:"at"`
}

// Notifier receives every feed entry as it is committed. Sinks are
// observers only; the node never consumes its own notifications.
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	switch {
	case n.AlertID != 0:
		log.Printf("[NOTIFY] seq=%d kind=%s alertId=%d at=%s", n.Seq, n.Kind, n.AlertID, n.At.UTC().Format(time.RFC3339))
	default:
		log.Printf("[NOTIFY] seq=%d kind=%s recordId=%d at=%s", n.Seq, n.Kind, n.RecordID, n.At.UTC().Format(time.RFC3339))
	}
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
