package dashboard

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/solix-energy/solix/internal/analysis"
	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/form"
	"github.com/solix-energy/solix/internal/location"
	"github.com/solix-energy/solix/internal/settings"
)

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	State any    `json:"state,omitempty"`
}

// writeError maps component errors onto status codes. state, when non-nil,
// is returned alongside so the client can redraw without a second request.
func writeError(w http.ResponseWriter, err error, state any) {
	status := http.StatusInternalServerError
	body := errorBody{Error: err.Error(), State: state}

	var verr *form.ValidationError
	var berr *analysis.BackendError
	var nerr *analysis.NetworkError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body.Kind = string(verr.Kind)
	case errors.Is(err, location.ErrInvalidPoint),
		errors.Is(err, district.ErrInvalidDistrict),
		errors.Is(err, settings.ErrInvalidTheme),
		errors.Is(err, form.ErrInvalidPhase):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, location.ErrLocationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, location.ErrLocationUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, analysis.ErrSubmissionInFlight):
		status = http.StatusConflict
	case errors.As(err, &berr), errors.As(err, &nerr):
		status = http.StatusBadGateway
		body.Error = analysis.UserMessage(err)
	default:
		log.Printf("[dashboard] unhandled error: %v", err)
		if state != nil {
			status = http.StatusBadGateway
		}
	}
	writeJSONStatus(w, status, body)
}
