// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package redaction hides personally identifying data in log output.
package redaction

import "strings"

// RedactEmail masks the local part of an email address for logging, keeping
// the first character and the full domain so log lines remain correlatable.
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "[redacted]"
	}
	local := email[:at]
	domain := email[at:]
	if len(local) == 1 {
		return "*" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + domain
}
