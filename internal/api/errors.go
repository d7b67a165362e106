package api

import (
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus/ctxlogrus"
	"github.com/pkg/errors"

	"github.com/brocaar/digico-report/internal/logging"
	"github.com/brocaar/digico-report/internal/storage"
)

var (
	errChannelNotFound = errors.New("channel not found")
	errInvalidArgument = errors.New("invalid argument")
)

var errToStatus = map[error]int{
	errNoSession:       http.StatusConflict,
	errChannelNotFound: http.StatusNotFound,
	errInvalidArgument: http.StatusBadRequest,

	storage.ErrUnknownTable:   http.StatusBadRequest,
	storage.ErrDoesNotExist:   http.StatusNotFound,
	storage.ErrInvalidSession: http.StatusBadRequest,
}

// statusForError returns the HTTP status of the given error.
func statusForError(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case storage.IsLoadError(err):
		return http.StatusBadRequest
	}

	if status, ok := errToStatus[errors.Cause(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError logs the error and writes it with its HTTP status and the
// request id.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)

	logger := ctxlogrus.Extract(r.Context()).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		logger.Error("api: request error")
	} else {
		logger.Warning("api: request error")
	}

	resp := errorResponse{Error: err.Error()}
	if id := logging.GetCtxID(r.Context()); id != uuid.Nil {
		resp.RequestID = id.String()
	}
	writeJSON(w, status, resp)
}
