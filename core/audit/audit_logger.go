package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// AuditEvent represents a protocol, verification or authorization event.
type AuditEvent struct {
	Timestamp time.Time
	EventType string // e.g., "RecordIntake", "ProofVerification"
	EntityID  string // e.g., record id, request token or caller
	Result    string // e.g., "success", "failure"
	Reason    string // error message or reason code
	Metadata  map[string]string
}

// AuditLogger is the interface for logging audit events.
type AuditLogger interface {
	LogEvent(event AuditEvent)
}

// StdoutAuditLogger is a simple implementation that logs to stdout.
type StdoutAuditLogger struct{}

func (l *StdoutAuditLogger) LogEvent(event AuditEvent) {
	fmt.Printf("[%s] [%s] Entity: %s, Result: %s, Reason: %s, Metadata: %+v\n",
		event.Timestamp.Format(time.RFC3339), event.EventType, event.EntityID, event.Result, event.Reason, event.Metadata)
}

// NewStdoutAuditLogger returns a new StdoutAuditLogger.
func NewStdoutAuditLogger() AuditLogger {
	return &StdoutAuditLogger{}
}

type chainedEntry struct {
	Timestamp string            `json:"timestamp"`
	EventType string            `json:"eventType"`
	EntityID  string            `json:"entityId"`
	Result    string            `json:"result"`
	Reason    string            `json:"reason"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	PrevHash  string            `json:"prevHash"`
	EntryHash string            `json:"entryHash"`
}

// ChainedFileLogger appends JSONL entries whose hashes chain: each
// entry hashes its fields plus the previous entry's hash, so edits to
// history are detectable.
type ChainedFileLogger struct {
	lock     sync.Mutex
	f        *os.File
	prevHash string
}

func NewChainedFileLogger(path string) (*ChainedFileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &ChainedFileLogger{f: f, prevHash: lastEntryHash(path)}, nil
}

// lastEntryHash reads the tail of an existing log so the chain continues
// across restarts instead of restarting from an empty PrevHash.
func lastEntryHash(path string) string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return ""
	}
	lines := bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n"))
	var last chainedEntry
	if err := json.Unmarshal(lines[len(lines)-1], &last); err != nil {
		return ""
	}
	return last.EntryHash
}

func (l *ChainedFileLogger) LogEvent(event AuditEvent) {
	l.lock.Lock()
	defer l.lock.Unlock()

	entry := chainedEntry{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		EventType: event.EventType,
		EntityID:  event.EntityID,
		Result:    event.Result,
		Reason:    event.Reason,
		Metadata:  event.Metadata,
		PrevHash:  l.prevHash,
	}
	// Hash excludes EntryHash itself
	h := sha256.New()
	h.Write([]byte(entry.Timestamp))
	h.Write([]byte(entry.EventType))
	h.Write([]byte(entry.EntityID))
	h.Write([]byte(entry.Result))
	h.Write([]byte(entry.Reason))
	h.Write([]byte(entry.PrevHash))
	entry.EntryHash = hex.EncodeToString(h.Sum(nil))

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.f.Write(append(line, '\n'))
	l.prevHash = entry.EntryHash
}

func (l *ChainedFileLogger) Close() error {
	return l.f.Close()
}
