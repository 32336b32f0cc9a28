package rpcServer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/orbs-network/pos-analytics/pkg/service/baseDataService"
	"github.com/orbs-network/pos-analytics/pkg/service/posDataService"
	"github.com/pkg/errors"
)

const JSONContentType = "application/json; charset=utf-8"

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

// HTTPError attaches a status code to an error.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// HandlerFunc is an http.HandlerFunc that returns an error.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// statusOf maps an error to its response code. Validation errors of the data
// services are client errors, everything else is a server error.
func statusOf(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	if baseDataService.IsValidationError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// WrapHandlerFunc converts a HandlerFunc, responding errors as JSON.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			w.Header().Set("Content-Type", JSONContentType)
			w.WriteHeader(statusOf(err))
			_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
		}
	}
}

// WriteJSON responds obj in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj interface{}) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

func addressVar(r *http.Request) string {
	return mux.Vars(r)["address"]
}

// rewardsQueryOptions reads the optional from_block parameter.
func rewardsQueryOptions(r *http.Request) (*posDataService.RewardsQueryOptions, error) {
	raw := r.URL.Query().Get("from_block")
	if raw == "" {
		return &posDataService.RewardsQueryOptions{}, nil
	}
	from, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, BadRequest(errors.Wrapf(err, "invalid from_block '%s'", raw))
	}
	return &posDataService.RewardsQueryOptions{FromBlock: from}, nil
}
