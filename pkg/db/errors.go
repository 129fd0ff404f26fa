package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique-constraint
// violation. A non-empty constraintName also matches errors that name the
// constraint directly (Postgres includes it; sqlite names columns instead, so
// the generic texts are always checked too).
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "duplicated key not allowed") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
