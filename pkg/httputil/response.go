package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/raccoonpkg/rack/pkg/errs"
)

// DetailResponse is the body of every error and message-only response.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteDetail writes a message-only success response (200 OK)
func WriteDetail(w http.ResponseWriter, detail string) error {
	return WriteJSON(w, http.StatusOK, DetailResponse{Detail: detail})
}

// WriteErrorMessage writes an error response with a caller-visible detail string
func WriteErrorMessage(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(DetailResponse{Detail: detail})
}

// WriteAppError maps a taxonomy error to its fixed HTTP status and writes the
// detail string verbatim. Non-taxonomy errors become an opaque 500.
func WriteAppError(w http.ResponseWriter, err error) {
	WriteErrorMessage(w, errs.KindOf(err).HTTPStatus(), errs.Detail(err))
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, detail string) {
	WriteErrorMessage(w, http.StatusBadRequest, detail)
}

// WriteUnauthorized writes an unauthorized error (401)
func WriteUnauthorized(w http.ResponseWriter, detail string) {
	WriteErrorMessage(w, http.StatusUnauthorized, detail)
}

// WriteNotFound writes a not found error (404)
func WriteNotFound(w http.ResponseWriter, detail string) {
	WriteErrorMessage(w, http.StatusNotFound, detail)
}

// WriteInternalError writes an internal server error (500) without leaking the cause
func WriteInternalError(w http.ResponseWriter, err error) {
	WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
}
