// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

// UsageReport is a per-provider snapshot of delivery counters for a bounded
// reporting period, typically the previous day. All counters are non-negative.
type UsageReport struct {
	Provider      string `json:"provider"`
	Date          string `json:"date"`
	EmailsSent    int64  `json:"emails_sent"`
	Opens         int64  `json:"opens"`
	Clicks        int64  `json:"clicks"`
	Subscribes    int64  `json:"subscribes"`
	Unsubscribes  int64  `json:"unsubscribes"`
	TotalContacts int64  `json:"total_contacts"`
}

// GrowthRate derives net audience growth for the period. Defined as 0 when the
// contact base is empty to avoid a division by zero.
func (r *UsageReport) GrowthRate() float64 {
	if r.TotalContacts < 1 {
		return 0.0
	}
	return float64(r.Subscribes-r.Unsubscribes) / float64(r.TotalContacts)
}
