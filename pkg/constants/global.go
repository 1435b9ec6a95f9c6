// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package constants

const (
	// ServiceName is the name of this service
	ServiceName = "audience-sync"
)
