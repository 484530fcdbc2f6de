// Package observation defines the encrypted artifacts deposited by
// sensing devices and the decrypted outcome tracked per record.
package observation

import (
	"time"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// EncryptedRecord is one health observation: an activity vector and a
// sleep vector, both stored only as oracle handles.
type EncryptedRecord struct {
	ID             ids.RecordID `json:"recordId"`
	ActivityHandle ids.Handle   `json:"activityHandle"`
	SleepHandle    ids.Handle   `json:"sleepHandle"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// EncryptedAlert is one urgent event with a single encrypted payload.
type EncryptedAlert struct {
	ID            ids.AlertID `json:"alertId"`
	PayloadHandle ids.Handle  `json:"payloadHandle"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Outcome is the decrypted result attached to a record. Every record
// gets one at intake with Summary "" and Handled false; Handled flips
// to true at most once, when a verified anomaly result is applied.
type Outcome struct {
	Summary string `json:"summary"`
	Handled bool   `json:"handled"`
}
