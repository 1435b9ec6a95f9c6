// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package espapi holds helpers shared by the ESP provider adapters.
package espapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/daybreak-media/audience-sync-service/pkg/errors"
	"github.com/daybreak-media/audience-sync-service/pkg/httpclient"
)

// MapHTTPError maps httpclient errors to domain errors with context logging.
// Raw transport errors never escape a provider package; every adapter routes
// its failures through here at the client boundary.
func MapHTTPError(ctx context.Context, providerName string, err error) error {
	if err == nil {
		return nil
	}

	if retryableErr, ok := err.(*httpclient.RetryableError); ok {
		slog.WarnContext(ctx, "ESP HTTP error occurred",
			"provider", providerName,
			"status_code", retryableErr.StatusCode,
			"message", retryableErr.Message,
		)

		switch retryableErr.StatusCode {
		case http.StatusNotFound:
			return errors.NewNotFound(fmt.Sprintf("resource not found in %s", providerName), err)
		case http.StatusConflict:
			return errors.NewConflict(fmt.Sprintf("resource already exists in %s", providerName), err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.NewUnauthorized(fmt.Sprintf("%s authentication failed", providerName), err)
		case http.StatusTooManyRequests:
			return errors.NewServiceUnavailable(fmt.Sprintf("%s rate limited", providerName), err)
		case http.StatusBadRequest:
			return errors.NewValidation(fmt.Sprintf("%s validation error: %s", providerName, retryableErr.Message), err)
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return errors.NewServiceUnavailable(fmt.Sprintf("%s service unavailable", providerName), err)
		default:
			slog.ErrorContext(ctx, "unexpected ESP HTTP status code",
				"provider", providerName,
				"status_code", retryableErr.StatusCode,
				"message", retryableErr.Message,
			)
			return errors.NewProvider("api_error", fmt.Sprintf("%s API error", providerName), err)
		}
	}

	slog.ErrorContext(ctx, "ESP request failed with non-HTTP error",
		"provider", providerName,
		"error", err.Error(),
	)
	return errors.NewProvider("transport_error", fmt.Sprintf("%s request failed", providerName), err)
}
