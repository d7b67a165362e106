package logging

import (
	"context"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus/ctxlogrus"
	log "github.com/sirupsen/logrus"
)

// ContextKey defines the context key type.
type ContextKey string

// ContextIDKey holds the key of the context ID.
const ContextIDKey ContextKey = "ctx_id"

// GetCtxID returns the context ID of the given context, or uuid.Nil when
// not set.
func GetCtxID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ContextIDKey).(uuid.UUID)
	return id
}

// Middleware adds the ContextIDKey to the request context, sets it as a
// log field of the request logger and logs the finished request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID, err := uuid.NewV4()
		if err != nil {
			log.WithError(err).Error("logging: new uuid error")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), ContextIDKey, ctxID)
		ctx = ctxlogrus.ToContext(ctx, log.WithFields(log.Fields{
			"ctx_id": ctxID,
			"method": r.Method,
			"path":   r.URL.Path,
		}))

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rw, r.WithContext(ctx))

		ctxlogrus.Extract(ctx).WithFields(log.Fields{
			"status":   rw.status,
			"duration": time.Since(start),
		}).Info("api: request finished")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
