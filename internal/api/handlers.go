package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus/ctxlogrus"
	"github.com/pkg/errors"

	"github.com/brocaar/digico-report/internal/aggregator"
	"github.com/brocaar/digico-report/internal/render"
	"github.com/brocaar/digico-report/internal/report"
	"github.com/brocaar/digico-report/internal/storage"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type sessionResponse struct {
	ID       string    `json:"id"`
	LoadedAt time.Time `json:"loadedAt"`
	Size     int       `json:"size"`
	Tables   []string  `json:"tables"`
}

type tableResponse struct {
	Table         string        `json:"table"`
	ChannelNumber int64         `json:"channelNumber"`
	SnapshotID    int64         `json:"snapshotId"`
	Rows          []storage.Row `json:"rows"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) postSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	b, multipart, err := readUpload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.Load(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctxlogrus.Extract(r.Context()).WithField("session_id", sess.ID).Info("api: session replaced")

	// browser form submit, show the report
	if multipart && strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.writeSession(w, r, sess)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	err := s.withSession(func(sess *storage.Session) error {
		s.writeSession(w, r, sess)
		return nil
	})
	if err != nil {
		writeError(w, r, err)
	}
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, sess *storage.Session) {
	tables, err := sess.Tables(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		ID:       sess.ID.String(),
		LoadedAt: sess.LoadedAt,
		Size:     sess.Size,
		Tables:   tables,
	})
}

// readUpload returns the uploaded session bytes, either from the multipart
// "file" field or the raw request body.
func readUpload(r *http.Request) ([]byte, bool, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, false, errors.Wrap(err, "read body error")
		}
		return b, false, nil
	}

	f, _, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, true, err
		}
		return nil, true, errors.Wrap(errInvalidArgument, "file field: "+err.Error())
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, true, errors.Wrap(err, "read file error")
	}
	return b, true, nil
}

func (s *Server) aggregate(r *http.Request, sess *storage.Session) ([]aggregator.ChannelRecord, error) {
	opts := s.aggregateOptions
	if v := r.URL.Query().Get("snapshot"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrap(errInvalidArgument, "snapshot: "+err.Error())
		}
		opts.SnapshotID = id
	}
	return aggregator.Aggregate(r.Context(), sess, opts)
}

func (s *Server) getChannels(w http.ResponseWriter, r *http.Request) {
	withCurve, _ := strconv.ParseBool(r.URL.Query().Get("curve"))

	var out []report.Channel
	err := s.withSession(func(sess *storage.Session) error {
		records, err := s.aggregate(r, sess)
		if err != nil {
			return err
		}

		out = make([]report.Channel, 0, len(records))
		for _, rec := range records {
			out = append(out, report.NewChannel(rec, withCurve))
		}
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	channel, err := strconv.ParseInt(q.Get("channel"), 10, 64)
	if err != nil {
		writeError(w, r, errors.Wrap(errInvalidArgument, "channel: "+err.Error()))
		return
	}

	format := s.format
	if v := q.Get("format"); v != "" {
		if format, err = render.ParseFormat(v); err != nil {
			writeError(w, r, errors.Wrap(errInvalidArgument, err.Error()))
			return
		}
	}

	var rec *aggregator.ChannelRecord
	err = s.withSession(func(sess *storage.Session) error {
		records, err := s.aggregate(r, sess)
		if err != nil {
			return err
		}
		for i := range records {
			if n := records[i].Channel.ChannelNumber; n.Valid && n.Int64 == channel {
				rec = &records[i]
				return nil
			}
		}
		return errChannelNotFound
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	scene, err := render.NewScene(rec.Curve(), s.viewport)
	if err != nil {
		if err == render.ErrUnavailable {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Draw(&buf, scene, format); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Write(buf.Bytes())
}

func (s *Server) getTables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	table := q.Get("table")

	resp := tableResponse{
		Table:         table,
		ChannelNumber: 1,
		SnapshotID:    s.aggregateOptions.SnapshotID,
	}

	for _, p := range []struct {
		name string
		dst  *int64
	}{
		{"channel", &resp.ChannelNumber},
		{"snapshot", &resp.SnapshotID},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, r, errors.Wrap(errInvalidArgument, p.name+": "+err.Error()))
			return
		}
		*p.dst = i
	}

	var out interface{}
	err := s.withSession(func(sess *storage.Session) error {
		if table == "" {
			tables, err := sess.Tables(r.Context())
			out = tables
			return err
		}

		rows, err := storage.GetTableRows(r.Context(), sess, table, resp.ChannelNumber, resp.SnapshotID)
		if err != nil {
			return err
		}
		resp.Rows = rows
		out = resp
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer

	err := s.withSession(func(sess *storage.Session) error {
		records, err := s.aggregate(r, sess)
		if err != nil {
			return err
		}

		graphs, err := report.Graphs(records, s.viewport)
		if err != nil {
			return err
		}

		return report.HTML(&buf, sess.ID.String(), records, graphs)
	})
	if err == errNoSession {
		err = report.UploadForm(&buf)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
