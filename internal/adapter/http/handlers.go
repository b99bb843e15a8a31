package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
)

const maxRequestBytes = 1 << 20

var errNotBroadcastable = errors.New("statement is a test, a draft, awaits a decision or has no text")

// issuancesResponse lists every stored record and the ones still in effect.
type issuancesResponse struct {
	Records []domain.IssuanceRecord `json:"records"`
	Active  []domain.IssuanceRecord `json:"active"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req domain.ComposeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stmt, err := s.composer.Compose(r.Context(), req)
	if err != nil {
		status := composeErrorStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("compose statement failed", "error", err, "product_id", req.ProductID)
		}
		writeError(w, status, err)
		return
	}

	if s.issuances != nil && stmt.Broadcastable() && !stmt.Cancels() {
		var zones []domain.ZoneCode
		for _, k := range stmt.Hazards {
			zones = append(zones, stmt.Zones[k]...)
		}
		stmt.Overlaps = s.issuances.Overlaps(stmt.Hazards, zones)
	}
	writeJSON(w, http.StatusOK, stmt)
}

func (s *Server) handleListIssuances(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, issuancesResponse{
		Records: nonNil(s.issuances.Records()),
		Active:  nonNil(s.issuances.Active()),
	})
}

// handleRecordIssuance stores a statement the operator has sent to air.
func (s *Server) handleRecordIssuance(w http.ResponseWriter, r *http.Request) {
	var stmt domain.Statement
	if err := decodeBody(w, r, &stmt); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !stmt.Broadcastable() {
		writeError(w, http.StatusUnprocessableEntity, errNotBroadcastable)
		return
	}
	if err := s.issuances.RecordStatement(stmt); err != nil {
		s.logger.Error("record issuance failed", "error", err, "product_id", stmt.ProductID)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("issuance recorded", "product_id", stmt.ProductID, "hazards", stmt.Hazards, "expiry", stmt.ExpiresAt)
	writeJSON(w, http.StatusCreated, issuancesResponse{
		Records: nonNil(s.issuances.Records()),
		Active:  nonNil(s.issuances.Active()),
	})
}

func (s *Server) handleResetIssuances(w http.ResponseWriter, _ *http.Request) {
	if err := s.issuances.Reset(); err != nil {
		s.logger.Error("reset issuances failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("issuance log reset")
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func composeErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidDecision),
		errors.Is(err, domain.ErrUnsupportedCombination),
		errors.Is(err, domain.ErrNoHazardKind),
		errors.Is(err, domain.ErrMultipleHazardKinds),
		errors.Is(err, domain.ErrTemplateKindMismatch),
		errors.Is(err, domain.ErrUnknownCanned),
		errors.Is(err, domain.ErrNothingToCompose):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func nonNil(records []domain.IssuanceRecord) []domain.IssuanceRecord {
	if records == nil {
		return []domain.IssuanceRecord{}
	}
	return records
}
