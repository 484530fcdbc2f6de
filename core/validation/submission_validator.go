package validation

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

func schemaDir() string {
	if env := os.Getenv("MONITOR_SCHEMA_DIR"); env != "" {
		return env
	}
	return filepath.Join("core", "validation", "schemas")
}

var handlePattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

func validateAgainstSchema(payload []byte, schemaFile string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	schemaPath := filepath.Join(schemaDir(), schemaFile)
	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaPath)
	documentLoader := gojsonschema.NewBytesLoader(payload)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		errStr := ""
		for _, e := range result.Errors() {
			errStr += e.String() + "; "
		}
		AuditValidationError("schema_check", errStr)
		return nil, fmt.Errorf("payload failed schema validation: %s", errStr)
	}
	return doc, nil
}

// ValidateSensorRecordSubmission validates a submit-sensor-record
// payload: schema shape plus explicit handle checks.
func ValidateSensorRecordSubmission(payload []byte) error {
	doc, err := validateAgainstSchema(payload, "sensor_record_schema_v1.json")
	if err != nil {
		return err
	}
	for _, field := range []string{"activityHandle", "sleepHandle"} {
		val, _ := doc[field].(string)
		if !handlePattern.MatchString(val) {
			AuditValidationError("handle_check", fmt.Sprintf("%s is not a 32-byte hex handle", field))
			return fmt.Errorf("%s is not a 32-byte hex handle", field)
		}
	}
	if deviceID, ok := doc["deviceId"].(string); ok && utf8.RuneCountInString(deviceID) > 128 {
		AuditValidationError("length_check", "deviceId exceeds 128 characters")
		return fmt.Errorf("deviceId exceeds 128 characters")
	}
	return nil
}

// ValidateAlertSubmission validates a submit-alert payload.
func ValidateAlertSubmission(payload []byte) error {
	doc, err := validateAgainstSchema(payload, "alert_schema_v1.json")
	if err != nil {
		return err
	}
	val, _ := doc["payloadHandle"].(string)
	if !handlePattern.MatchString(val) {
		AuditValidationError("handle_check", "payloadHandle is not a 32-byte hex handle")
		return fmt.Errorf("payloadHandle is not a 32-byte hex handle")
	}
	if deviceID, ok := doc["deviceId"].(string); ok && utf8.RuneCountInString(deviceID) > 128 {
		AuditValidationError("length_check", "deviceId exceeds 128 characters")
		return fmt.Errorf("deviceId exceeds 128 characters")
	}
	return nil
}

// ValidateOracleCallback validates an oracle callback envelope. Only
// the transport shape is checked here; proof verification happens in
// the protocol core.
func ValidateOracleCallback(payload []byte) error {
	doc, err := validateAgainstSchema(payload, "oracle_callback_schema_v1.json")
	if err != nil {
		return err
	}
	for _, field := range []string{"cleartexts", "proof"} {
		if val, ok := doc[field].(string); ok && val != "" {
			if _, err := base64.StdEncoding.DecodeString(val); err != nil {
				AuditValidationError("base64_check", fmt.Sprintf("%s is not valid base64", field))
				return fmt.Errorf("%s is not valid base64", field)
			}
		}
	}
	if proof, ok := doc["proof"].(string); ok && utf8.RuneCountInString(proof) > 512 {
		AuditValidationError("length_check", "proof exceeds 512 characters")
		return fmt.Errorf("proof exceeds 512 characters")
	}
	return nil
}
