package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

// Response is the envelope of every JSON body the server writes.
type Response struct {
	Code  string       `json:"code,omitempty"`
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string          `json:"code"`
	Message string          `json:"message,omitempty"`
	Details []schema.Record `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, code string, data any) error {
	return writeJSON(w, http.StatusOK, Response{Code: code, Data: data})
}

// writeError maps err onto a status and envelope. Validation reports become
// 422 with one detail record per violation; anything unrecognised is a 500
// whose message is not exposed.
func writeError(w http.ResponseWriter, err error) error {
	if errs := schema.ExtractValidationErrors(err); errs != nil {
		return writeJSON(w, http.StatusUnprocessableEntity, Response{
			Code: "validation_error",
			Error: &ErrorDetail{
				Code:    "validation_error",
				Message: "input failed validation",
				Details: errs.Records(),
			},
		})
	}

	httpErr := ErrInternal
	errors.As(err, &httpErr)
	detail := &ErrorDetail{Code: httpErr.Key, Message: http.StatusText(httpErr.Code)}
	if httpErr.Code < http.StatusInternalServerError && err.Error() != httpErr.Key {
		detail.Message = err.Error()
	}
	return writeJSON(w, httpErr.Code, Response{Code: httpErr.Key, Error: detail})
}
