package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintra/internal/core"
	"fintra/internal/log"
)

// timeNow is swapped in tests that pin the reference date.
var timeNow = time.Now

// ownerHeader carries the verified user identity, set by the upstream auth
// layer. The service trusts it; authentication itself lives outside this
// module.
const ownerHeader = "X-User-ID"

// maxBodyBytes caps request bodies. 1 MiB is generous for JSON documents.
const maxBodyBytes = 1 << 20

func ownerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ownerHeader))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func writeError(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, errorResponse{Error: message, Reason: reason})
}

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidConfig,
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrEmptyAccount,
	core.ErrSameAccount,
	core.ErrInvalidType,
	core.ErrInvalidStatus,
	core.ErrInvalidPriority,
	core.ErrInvalidFreq,
}

// writeDomainError maps domain errors onto transport statuses with a stable
// machine-readable reason.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, core.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, core.ErrMissingOwner):
		// Contract bug, not user input: an owner scope went missing
		// between middleware and storage.
		log.FromContext(r.Context()).Error("Owner scope missing in request path",
			log.FieldPath, r.URL.Path, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	default:
		for _, verr := range validationErrors {
			if errors.Is(err, verr) {
				writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
				return
			}
		}
		log.FromContext(r.Context()).Error("Request failed",
			log.FieldPath, r.URL.Path, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// parseAmount converts a decimal string field ("12.34" or "12,34") to Money.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseOptionalDate parses a YYYY-MM-DD field, returning the zero Date for
// an empty string.
func parseOptionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
