package validation

import (
	"log"
	"os"
	"sync"
)

var auditOnce sync.Once
var auditLogger *log.Logger

func auditLogPath() string {
	if env := os.Getenv("VALIDATION_AUDIT_LOG"); env != "" {
		return env
	}
	return "validation_audit.log"
}

func getAuditLogger() *log.Logger {
	auditOnce.Do(func() {
		f, err := os.OpenFile(auditLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open audit log: %v", err)
		}
		auditLogger = log.New(f, "[AUDIT] ", log.LstdFlags|log.LUTC)
	})
	return auditLogger
}

// AuditValidationError logs validation failures to a file. Messages
// carry field names and reasons only, never handle or cleartext bytes.
func AuditValidationError(context, errMsg string) {
	logger := getAuditLogger()
	logger.Printf("%s | %s", context, errMsg)
}
