// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package redaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "typical address", input: "reader@example.com", expected: "r*****@example.com"},
		{name: "single char local part", input: "a@example.com", expected: "*@example.com"},
		{name: "not an email", input: "not-an-email", expected: "[redacted]"},
		{name: "empty string", input: "", expected: "[redacted]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RedactEmail(tc.input))
		})
	}
}
