// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package rest exposes the sync engine's operational surface over HTTP:
// contact resync, newsletter send control, test-email preferences, list
// visibility, and usage reporting.
package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/internal/service"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// actingUserHeader identifies the store user a request acts on behalf of.
// Visibility filtering treats an absent header as an anonymous visitor.
const actingUserHeader = "X-Acting-User"

// Server wires the service layer into HTTP handlers.
type Server struct {
	engine    *service.ContactSyncEngine
	bridge    *service.MembershipBridge
	resync    *service.ResyncService
	sendGate  *service.SendGate
	reporter  *service.UsageReporter
	registry  port.ListRegistry
	readiness func(ctx context.Context) error
}

// Config collects the server's collaborators.
type Config struct {
	Engine    *service.ContactSyncEngine
	Bridge    *service.MembershipBridge
	Resync    *service.ResyncService
	SendGate  *service.SendGate
	Reporter  *service.UsageReporter
	Registry  port.ListRegistry
	Readiness func(ctx context.Context) error
}

// NewServer creates the HTTP server facade.
func NewServer(cfg Config) *Server {
	return &Server{
		engine:    cfg.Engine,
		bridge:    cfg.Bridge,
		resync:    cfg.Resync,
		sendGate:  cfg.SendGate,
		reporter:  cfg.Reporter,
		registry:  cfg.Registry,
		readiness: cfg.Readiness,
	}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type", actingUserHeader},
	}))
	r.Use(requestID)
	r.Use(requestLogger)

	r.Get("/livez", s.handleLivez)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/contacts/resync", s.handleResync)
		r.Get("/contacts/{email}/lists", s.handleContactLists)
		r.Put("/contacts/{email}/lists", s.handleUpdateContactLists)

		r.Get("/lists", s.handleVisibleLists)

		r.Post("/newsletters/{newsletterID}/send", s.handleSend)
		r.Get("/newsletters/{newsletterID}/sync-error", s.handleSyncError)

		r.Get("/users/{userID}/test-emails", s.handleGetTestEmails)
		r.Put("/users/{userID}/test-emails", s.handleUpdateTestEmails)

		r.Get("/usage-report", s.handleActiveUsageReport)
		r.Get("/usage-reports", s.handleAllUsageReports)
	})

	return r
}

func (s *Server) handleLivez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.readiness != nil {
		if err := s.readiness(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleResync(w http.ResponseWriter, r *http.Request) {
	var cfg model.ResyncConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, r, errs.NewValidation("invalid resync request body", err))
		return
	}

	processed, err := s.resync.Resync(r.Context(), cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"processed": processed,
		"dry_run":   cfg.IsDryRun,
	})
}

func (s *Server) handleContactLists(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	lists, err := s.engine.GetContactCombinedLists(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"lists": lists})
}

// contactListsUpdateRequest is the bulk membership change body.
type contactListsUpdateRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

func (s *Server) handleUpdateContactLists(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var body contactListsUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, errs.NewValidation("invalid list update body", err))
		return
	}

	if err := s.engine.UpdateContactLists(r.Context(), email, body.Add, body.Remove); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVisibleLists(w http.ResponseWriter, r *http.Request) {
	syncCtx := service.SyncContext{ActingUserID: r.Header.Get(actingUserHeader)}

	lists, err := s.registry.GetListsForProvider(r.Context(), s.engine.Provider().Name())
	if err != nil {
		writeError(w, r, err)
		return
	}

	visible, err := s.bridge.FilterListsObjects(r.Context(), syncCtx, lists)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"lists": visible})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	newsletterID := chi.URLParam(r, "newsletterID")

	if err := s.sendGate.Send(r.Context(), newsletterID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (s *Server) handleSyncError(w http.ResponseWriter, r *http.Request) {
	newsletterID := chi.URLParam(r, "newsletterID")

	sendError, err := s.sendGate.LastSendError(r.Context(), newsletterID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sendError == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, sendError)
}

func (s *Server) handleGetTestEmails(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	emails, err := s.sendGate.TestEmails(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"emails": emails})
}

// testEmailsRequest is the test-email preference body.
type testEmailsRequest struct {
	Emails []string `json:"emails"`
}

func (s *Server) handleUpdateTestEmails(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var body testEmailsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, errs.NewValidation("invalid test emails body", err))
		return
	}

	if err := s.sendGate.UpdateTestEmails(r.Context(), userID, body.Emails); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActiveUsageReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reporter.ActiveReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAllUsageReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.reporter.CollectReports(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reports)
}
