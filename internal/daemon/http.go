package daemon

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"

	"github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BucketsResponse is served at /v1/buckets.
type BucketsResponse struct {
	Granularity model.Granularity  `json:"granularity"`
	Range       *model.DateRange   `json:"range,omitempty"`
	Buckets     []model.TimeBucket `json:"buckets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the HTTP API with logging and panic recovery applied.
func (s *Service) Handler() http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/healthz", s.handleHealth)
	router.HandlerFunc(http.MethodGet, "/v1/status", s.handleStatus)
	router.HandlerFunc(http.MethodGet, "/v1/metrics", s.handleMetrics)
	router.HandlerFunc(http.MethodGet, "/v1/buckets", s.handleBuckets)
	router.HandlerFunc(http.MethodGet, "/v1/events", s.handleEvents)
	router.HandlerFunc(http.MethodGet, "/v1/stream", s.handleStream)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})

	return alice.New(panicMiddleware(), loggingMiddleware()).Then(router)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.L.WithError(err).Warn("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// parseRange reads from/to/days query parameters. With none present it
// returns the daemon's configured window. from without to ends today.
func parseRange(q url.Values, now time.Time, defaultDays int) (*model.DateRange, error) {
	n := defaultDays
	if days := q.Get("days"); days != "" {
		v, err := strconv.Atoi(days)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid days %q", days)
		}
		n = v
	}
	return pipeline.ResolveRange(q.Get("from"), q.Get("to"), n, now)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if len(q) == 0 {
		s.mu.RLock()
		ready, metrics := s.hasSnapshot, s.metrics
		s.mu.RUnlock()
		if !ready {
			writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
			return
		}
		writeJSON(w, http.StatusOK, metrics)
		return
	}

	rng, err := parseRange(q, s.now(), s.cfg.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	src := s.cfg.Source
	if v := q.Get("source"); v != "" {
		src = v
	}

	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	if data == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return
	}
	writeJSON(w, http.StatusOK, s.compute(data, rng, src))
}

func (s *Service) handleBuckets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := parseRange(q, s.now(), s.cfg.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	src := s.cfg.Source
	if v := q.Get("source"); v != "" {
		src = v
	}
	g, ok := pipeline.ParseGranularity(q.Get("granularity"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid granularity %q", q.Get("granularity")))
		return
	}
	if g == "" {
		g = pipeline.SelectGranularity(rng)
	}

	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	if data == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return
	}

	txs := pipeline.FilterBySource(data.Transactions, src)
	writeJSON(w, http.StatusOK, BucketsResponse{
		Granularity: g,
		Range:       rng,
		Buckets:     pipeline.AggregateBuckets(txs, data.Expenses, rng, g, s.now()),
	})
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid since %q", v))
			return
		}
		since = n
	}

	s.mu.RLock()
	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID > since {
			events = append(events, ev)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
