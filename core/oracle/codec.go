package oracle

import (
	"encoding/json"
	"fmt"
)

// Cleartext payloads cross the callback boundary as opaque bytes. The
// anomaly path carries an ordered JSON array of strings, one entry per
// requested handle; the alert path carries the decrypted text as-is.

// EncodeCleartextList encodes an ordered list of decrypted values.
func EncodeCleartextList(values []string) ([]byte, error) {
	return json.Marshal(values)
}

// DecodeCleartextList decodes the anomaly callback payload.
func DecodeCleartextList(data []byte) ([]string, error) {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode cleartext list: %w", err)
	}
	return values, nil
}

// EncodeCleartext encodes a single decrypted value.
func EncodeCleartext(value string) []byte {
	return []byte(value)
}

// DecodeCleartext decodes the alert callback payload.
func DecodeCleartext(data []byte) string {
	return string(data)
}
