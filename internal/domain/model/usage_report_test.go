// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageReportGrowthRate(t *testing.T) {
	testCases := []struct {
		name     string
		report   UsageReport
		expected float64
	}{
		{
			name:     "zero contacts never divides",
			report:   UsageReport{Subscribes: 50, Unsubscribes: 10, TotalContacts: 0},
			expected: 0.0,
		},
		{
			name:     "positive growth",
			report:   UsageReport{Subscribes: 30, Unsubscribes: 10, TotalContacts: 1000},
			expected: 0.02,
		},
		{
			name:     "negative growth",
			report:   UsageReport{Subscribes: 5, Unsubscribes: 25, TotalContacts: 100},
			expected: -0.2,
		},
		{
			name:     "no activity",
			report:   UsageReport{TotalContacts: 500},
			expected: 0.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, tc.report.GrowthRate(), 1e-9)
		})
	}
}
