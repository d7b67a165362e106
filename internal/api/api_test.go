package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofrs/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/brocaar/digico-report/internal/config"
	"github.com/brocaar/digico-report/internal/report"
	"github.com/brocaar/digico-report/internal/test"
)

func testConfig(t *testing.T) config.Config {
	var c config.Config
	c.Session.TempDir = t.TempDir()
	c.Session.MaxUploadSize = 1 << 20
	return c
}

func do(h http.Handler, method, target string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func multipartBody(field string, b []byte) ([]byte, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "show.session")
	if err != nil {
		panic(err)
	}
	fw.Write(b)
	mw.Close()
	return buf.Bytes(), mw.FormDataContentType()
}

func stagedFiles(t *testing.T, dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestServer(t *testing.T) {
	Convey("Given a server without session", t, func() {
		conf := testConfig(t)
		s, err := NewServer(conf)
		So(err, ShouldBeNil)
		defer s.Close()
		h := s.Handler()

		So(s.SessionLoaded(), ShouldBeFalse)

		Convey("Then listing the channels returns 409 with the request id", func() {
			rec := do(h, http.MethodGet, "/api/channels", nil, nil)
			So(rec.Code, ShouldEqual, http.StatusConflict)

			var resp errorResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Error, ShouldEqual, errNoSession.Error())
			id, err := uuid.FromString(resp.RequestID)
			So(err, ShouldBeNil)
			So(id, ShouldNotEqual, uuid.Nil)
		})

		Convey("Then the index shows the upload form", func() {
			rec := do(h, http.MethodGet, "/", nil, nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "multipart/form-data")
			So(rec.Body.String(), ShouldContainSubstring, "No session loaded")
		})

		Convey("When uploading garbage bytes", func() {
			rec := do(h, http.MethodPost, "/api/session", []byte("not a session"), nil)

			Convey("Then 400 is returned and no session is loaded", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(s.SessionLoaded(), ShouldBeFalse)
			})
		})

		Convey("When uploading a too large body", func() {
			body := append(test.MustSessionFile(t, test.DemoSession()...), make([]byte, 1<<20)...)
			rec := do(h, http.MethodPost, "/api/session", body, nil)

			Convey("Then 413 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})

		Convey("When uploading a multipart request without file field", func() {
			body, ct := multipartBody("other", []byte("x"))
			rec := do(h, http.MethodPost, "/api/session", body, map[string]string{"Content-Type": ct})

			Convey("Then 400 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When uploading a session as raw body", func() {
			rec := do(h, http.MethodPost, "/api/session", test.MustSessionFile(t, test.DemoSession()...), nil)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var sess sessionResponse
			So(json.Unmarshal(rec.Body.Bytes(), &sess), ShouldBeNil)

			Convey("Then the session is loaded", func() {
				So(s.SessionLoaded(), ShouldBeTrue)
				So(sess.ID, ShouldNotBeEmpty)
				So(sess.Tables, ShouldResemble, []string{"Channel", "DynamicProcessor", "EqualiserBand", "Passband"})
				So(stagedFiles(t, conf.Session.TempDir), ShouldEqual, 1)
			})

			Convey("Then the channels are returned", func() {
				rec := do(h, http.MethodGet, "/api/channels", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)

				var channels []report.Channel
				So(json.Unmarshal(rec.Body.Bytes(), &channels), ShouldBeNil)
				So(channels, ShouldHaveLength, 3)
				So(channels[0].ID, ShouldEqual, 21)
				So(channels[0].EQBands, ShouldHaveLength, 3)
				So(channels[0].Curve, ShouldBeNil)
				So(channels[2].Compressor, ShouldBeNil)
			})

			Convey("Then the channels of another snapshot can be requested with curves", func() {
				rec := do(h, http.MethodGet, "/api/channels?snapshot=10001&curve=true", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)

				var channels []report.Channel
				So(json.Unmarshal(rec.Body.Bytes(), &channels), ShouldBeNil)
				So(channels, ShouldHaveLength, 1)
				So(channels[0].ID, ShouldEqual, 30)
				So(channels[0].Curve, ShouldBeNil)
			})

			Convey("Then the graph of a channel is rendered as svg", func() {
				rec := do(h, http.MethodGet, "/api/channels/graph?channel=1", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
				So(rec.Body.String(), ShouldStartWith, "<svg")
			})

			Convey("Then the graph of a channel is rendered as png", func() {
				rec := do(h, http.MethodGet, "/api/channels/graph?channel=2&format=png", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldEqual, "image/png")
			})

			Convey("Then an unknown channel returns 404", func() {
				rec := do(h, http.MethodGet, "/api/channels/graph?channel=99", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Then an invalid channel returns 400", func() {
				rec := do(h, http.MethodGet, "/api/channels/graph?channel=abc", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then the table rows can be browsed", func() {
				rec := do(h, http.MethodGet, "/api/tables?table=Passband&channel=2", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)

				var resp tableResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.ChannelNumber, ShouldEqual, 2)
				So(resp.SnapshotID, ShouldEqual, 10000)
				So(resp.Rows, ShouldHaveLength, 1)
				So(resp.Rows[0]["lowPassFrequency"], ShouldEqual, 12000)
			})

			Convey("Then the table names are listed", func() {
				rec := do(h, http.MethodGet, "/api/tables", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)

				var tables []string
				So(json.Unmarshal(rec.Body.Bytes(), &tables), ShouldBeNil)
				So(tables, ShouldContain, "EqualiserBand")
			})

			Convey("Then an unknown table returns 400", func() {
				rec := do(h, http.MethodGet, "/api/tables?table=sqlite_master", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then the index shows the report", func() {
				rec := do(h, http.MethodGet, "/", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `id="channel-21"`)
				So(rec.Body.String(), ShouldContainSubstring, "<svg")
				So(rec.Body.String(), ShouldContainSubstring, sess.ID)
			})

			Convey("When uploading another session as multipart form", func() {
				body, ct := multipartBody("file", test.MustSessionFile(t,
					`insert into Channel (id, snapshotId, channelNumber, name, gain) values (21, 10000, 1, 'Kick', 0)`,
				))
				rec := do(h, http.MethodPost, "/api/session", body, map[string]string{
					"Content-Type": ct,
					"Accept":       "text/html",
				})

				Convey("Then the browser is redirected to the report", func() {
					So(rec.Code, ShouldEqual, http.StatusSeeOther)
					So(rec.Header().Get("Location"), ShouldEqual, "/")
				})

				Convey("Then the previous session is replaced and removed", func() {
					So(stagedFiles(t, conf.Session.TempDir), ShouldEqual, 1)

					rec := do(h, http.MethodGet, "/api/session", nil, nil)
					So(rec.Code, ShouldEqual, http.StatusOK)

					var newSess sessionResponse
					So(json.Unmarshal(rec.Body.Bytes(), &newSess), ShouldBeNil)
					So(newSess.ID, ShouldNotEqual, sess.ID)
				})

				Convey("Then the graph of a channel without bands returns 204", func() {
					rec := do(h, http.MethodGet, "/api/channels/graph?channel=1", nil, nil)
					So(rec.Code, ShouldEqual, http.StatusNoContent)
				})
			})
		})
	})

	Convey("Given an invalid graph format", t, func() {
		conf := testConfig(t)
		conf.Graph.Format = "gif"

		Convey("Then creating the server fails", func() {
			_, err := NewServer(conf)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestServerIncompleteSession(t *testing.T) {
	Convey("Given a server", t, func() {
		conf := testConfig(t)
		s, err := NewServer(conf)
		So(err, ShouldBeNil)
		defer s.Close()
		h := s.Handler()

		Convey("When uploading a session without Channel table", func() {
			rec := do(h, http.MethodPost, "/api/session", test.MustSQLiteFile(t, test.Schema[1]), nil)
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then the channel list is empty", func() {
				rec := do(h, http.MethodGet, "/api/channels", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldEqual, "[]\n")
			})

			Convey("Then the index shows the report without channels", func() {
				rec := do(h, http.MethodGet, "/", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "No channels")
			})
		})

		Convey("When uploading a session with a channel without channel number", func() {
			rec := do(h, http.MethodPost, "/api/session", test.MustSessionFile(t,
				`insert into Channel (id, snapshotId, channelNumber, name, gain) values (21, 10000, 1, 'Kick', 0)`,
				`insert into Channel (id, snapshotId, channelNumber, name, gain) values (22, 10000, null, null, 0)`,
			), nil)
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then both channels are returned", func() {
				rec := do(h, http.MethodGet, "/api/channels", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)

				var channels []report.Channel
				So(json.Unmarshal(rec.Body.Bytes(), &channels), ShouldBeNil)
				So(channels, ShouldHaveLength, 2)
				So(*channels[0].ChannelNumber, ShouldEqual, 1)
				So(channels[1].ChannelNumber, ShouldBeNil)
			})

			Convey("Then the report names the unnamed channel", func() {
				rec := do(h, http.MethodGet, "/", nil, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "Channel 1 - Kick")
				So(rec.Body.String(), ShouldContainSubstring, "Channel - - (unnamed)")
			})
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a server", t, func() {
		s, err := NewServer(testConfig(t))
		So(err, ShouldBeNil)
		defer s.Close()

		Convey("When loading a session", func() {
			sess, err := s.Load(context.Background(), test.MustSessionFile(t))
			So(err, ShouldBeNil)

			Convey("Then closing the server closes the session", func() {
				So(s.Close(), ShouldBeNil)
				So(s.SessionLoaded(), ShouldBeFalse)
				So(sess.DB().Ping(), ShouldNotBeNil)
			})
		})
	})
}
