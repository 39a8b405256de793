// Package schedule exposes the schedule gateway over HTTP.
package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/kilianp07/chargeplan/core/audit"
	"github.com/kilianp07/chargeplan/core/gateway"
	"github.com/kilianp07/chargeplan/core/logger"
	"github.com/kilianp07/chargeplan/core/monitoring"
	sched "github.com/kilianp07/chargeplan/core/schedule"
	"github.com/kilianp07/chargeplan/infra/chart"
)

// maxBody bounds request bodies.
const maxBody = 64 << 10

// Handler serves the schedule endpoints. Writes are serialized so that
// concurrent edits within one process cannot overwrite each other.
type Handler struct {
	gw      *gateway.Gateway
	history audit.Store
	chart   chart.Renderer
	log     logger.Logger

	writeMu sync.Mutex
}

// NewHandler builds a handler around gw. history and renderer may be nil,
// in which case the history endpoint answers with an empty list and the
// chart endpoint with a plain bar chart.
func NewHandler(gw *gateway.Gateway, history audit.Store, renderer chart.Renderer, log logger.Logger) *Handler {
	if history == nil {
		history = audit.NopStore{}
	}
	if renderer == nil {
		renderer = chart.EChartsRenderer{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Handler{gw: gw, history: history, chart: renderer, log: log}
}

// Register mounts the routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/schedule", h.read).Methods(http.MethodGet)
	r.HandleFunc("/api/schedule", h.write).Methods(http.MethodPut, http.MethodPost)
	r.HandleFunc("/api/schedule", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/api/schedule/history", h.listHistory).Methods(http.MethodGet)
	r.HandleFunc("/schedule/chart", h.renderChart).Methods(http.MethodGet)
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	res, err := h.gw.Read(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, res)
}

// writeBody is the union of the upsert and clear payloads.
type writeBody struct {
	Action *string `json:"action"`
	gateway.UpsertRequest
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request) {
	var body writeBody
	if err := decodeBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if body.Action != nil {
		res, err := h.gw.Clear(r.Context(), gateway.ClearAction(*body.Action))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.ok(w, res)
		return
	}
	res, err := h.gw.Upsert(r.Context(), body.UpsertRequest)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, res)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		var body struct {
			Key string `json:"key"`
		}
		if err := decodeBody(r, &body); err != nil {
			h.fail(w, r, err)
			return
		}
		key = body.Key
	}
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	res, err := h.gw.Delete(r.Context(), key)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, res)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := h.history.Query(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	h.ok(w, struct {
		Records []audit.Record `json:"records"`
	}{records})
}

func parseQuery(r *http.Request) (audit.Query, error) {
	v := r.URL.Query()
	q := audit.Query{Operation: audit.Operation(v.Get("operation"))}
	for name, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
		s := v.Get(name)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("%w: %s must be RFC3339", sched.ErrValidation, name)
		}
		*dst = t
	}
	if k := v.Get("key"); k != "" {
		key, err := sched.ParseKey(k)
		if err != nil {
			return q, err
		}
		q.Key = key
	}
	return q, nil
}

func (h *Handler) renderChart(w http.ResponseWriter, r *http.Request) {
	res, err := h.gw.Read(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.chart.Render(&buf, res.Date, res.Resolved); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", sched.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", sched.ErrValidation, err)
	}
	return nil
}

// ok writes payload with "success": true merged into it.
func (h *Handler) ok(w http.ResponseWriter, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		h.log.Errorf("encode response: %v", err)
		writeJSON(w, http.StatusInternalServerError, failure(err))
		return
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		h.log.Errorf("encode response: %v", err)
		writeJSON(w, http.StatusInternalServerError, failure(err))
		return
	}
	fields["success"] = json.RawMessage("true")
	writeJSON(w, http.StatusOK, fields)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		monitoring.Capture(err, "route", r.URL.Path, "method", r.Method, "status", strconv.Itoa(status))
	} else {
		h.log.Debugw("request rejected", map[string]any{"path": r.URL.Path, "status": status, "error": err.Error()})
	}
	writeJSON(w, status, failure(err))
}

// StatusOf maps an error to its HTTP status code.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, sched.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, sched.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func failure(err error) errorBody { return errorBody{Success: false, Error: err.Error()} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
