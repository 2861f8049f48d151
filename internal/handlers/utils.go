package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/AnshRaj112/certify-backend/internal/services"
	"github.com/go-playground/validator/v10"
)

// requestTimeout bounds each store round trip made on behalf of a request.
const requestTimeout = 10 * time.Second

const detailStoreUnavailable = "Database not available"

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse matches the {"detail": "..."} body existing clients parse.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is returned by informational endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Detail: message})
}

// writeServiceError maps service errors to responses. action completes the
// "Error <action>: ..." message used for unexpected faults.
func writeServiceError(w http.ResponseWriter, err error, action, notFound string) {
	switch {
	case errors.Is(err, services.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, detailStoreUnavailable)
	case errors.Is(err, services.ErrNotFound) && notFound != "":
		writeError(w, http.StatusNotFound, notFound)
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error %s: %v", action, err))
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and checks required fields.
// Failures are answered with 422 and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return false
	}

	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			writeError(w, http.StatusUnprocessableEntity, "missing required field(s): "+strings.Join(fields, ", "))
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// deref returns the value of a validated required field.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
