package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// RecordID identifies one encrypted sensor record. Ids are assigned
// sequentially starting at 1; 0 is never assigned.
type RecordID uint64

// AlertID identifies one encrypted alert. Same numbering rules as
// RecordID, counted in its own namespace.
type AlertID uint64

// Handle is an opaque 32-byte reference to an encrypted value held by
// the decryption oracle. The node never interprets its contents.
type Handle [32]byte

// EmptyHandle is the zero-value Handle (all zeros)
var EmptyHandle Handle

// NewHandle derives a handle by hashing input bytes
func NewHandle(data []byte) Handle {
	hash := sha256.Sum256(data)
	return Handle(hash)
}

// HandleFromString parses a 64-char hex string into a Handle
func HandleFromString(s string) (Handle, error) {
	var h Handle
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("handle must be %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

// String converts a Handle back to a hex string
func (h Handle) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalJSON encodes the handle as a hex string.
func (h Handle) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a hex string into the handle.
func (h *Handle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := HandleFromString(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
