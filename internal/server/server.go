// SPDX-License-Identifier: EPL-2.0

// Package server exposes the degradation pipeline over HTTP. A client
// uploads one file, gets a session id back and then drives parameter
// changes over a websocket bound to that session.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/pipeline"
)

const (
	// multipart framing allowance on top of the configured upload limit
	formOverhead = 1 << 20

	sweepInterval  = time.Minute
	writeDeadline  = 10 * time.Second
	maxParamsBytes = 4096
)

type Server struct {
	pipe     *pipeline.Pipeline
	sessions *Sessions
	log      *slog.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	httpServer *http.Server
	cancel     context.CancelFunc
	ctx        context.Context

	conns    map[*websocket.Conn]struct{}
	connsMu  sync.Mutex
	shutting bool
	wg       sync.WaitGroup
}

func New(p *pipeline.Pipeline, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		pipe:     p,
		sessions: NewSessions(p.Config().SessionTTL()),
		log:      log,
		mux:      http.NewServeMux(),
		ctx:      ctx,
		cancel:   cancel,
		conns:    make(map[*websocket.Conn]struct{}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	s.mux.HandleFunc("GET /{$}", handleIndex)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/bounds", s.handleBounds)
	s.mux.HandleFunc("POST /api/upload", s.handleUpload)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) Sessions() *Sessions { return s.sessions }

// ListenAndServe blocks until the server stops. It returns nil after a
// clean Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sessions.Run(s.ctx, sweepInterval, func(n int) {
			s.log.Info("expired sessions removed", "count", n)
		})
	}()

	s.log.Info("listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes every websocket and waits for
// background work to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.connsMu.Lock()
	s.shutting = true
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.connsMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
	return err
}

// checkOrigin accepts same-origin requests and clients that send no Origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && u.Host == r.Host {
		return true
	}
	s.log.Warn("rejected websocket origin", "origin", origin)
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleBounds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, pipeline.BoundsOf(s.pipe.Config()))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.pipe.Config().MaxUploadBytes()+formOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, pipeline.ErrTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	track, err := s.pipe.Load(header.Filename, file)
	if err != nil {
		s.log.Warn("upload rejected", "name", header.Filename, "error", err)
		writeError(w, uploadStatus(err), err)
		return
	}

	id := s.sessions.Create(track)
	s.log.Info("session created", "session", id, "name", track.Name)

	cfg := s.pipe.Config()
	writeJSON(w, http.StatusCreated, UploadResponse{
		Session:  id,
		Name:     track.Name,
		Info:     track.Info,
		Duration: track.Original.Duration(),
		Bounds:   pipeline.BoundsOf(cfg),
		Initial:  pipeline.Params{TargetRate: track.Info.SampleRate, BitDepth: 16}.Bound(cfg),
	})
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, audio.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, audio.ErrDecode),
		errors.Is(err, audio.ErrSilentInput),
		errors.Is(err, audio.ErrNonFiniteSample):
		return http.StatusUnprocessableEntity
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	track, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown or expired session"))
		return
	}

	// The WaitGroup is only added to while Shutdown has not started waiting.
	s.connsMu.Lock()
	if s.shutting {
		s.connsMu.Unlock()
		writeError(w, http.StatusServiceUnavailable, errors.New("server is shutting down"))
		return
	}
	s.wg.Add(1)
	s.connsMu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "session", id, "error", err)
		s.wg.Done()
		return
	}

	s.connsMu.Lock()
	s.conns[conn] = struct{}{}
	if s.shutting {
		_ = conn.Close()
	}
	s.connsMu.Unlock()

	defer func() {
		s.connsMu.Lock()
		delete(s.conns, conn)
		s.connsMu.Unlock()
		_ = conn.Close()
		s.sessions.Delete(id)
		s.log.Info("session closed", "session", id)
		s.wg.Done()
	}()

	s.serveSession(conn, id, track)
}

func (s *Server) serveSession(conn *websocket.Conn, id string, track *pipeline.Track) {
	conn.SetReadLimit(maxParamsBytes)

	err := s.write(conn, ReadyMessage{
		Type:   TypeReady,
		Name:   track.Name,
		Info:   track.Info,
		Bounds: pipeline.BoundsOf(s.pipe.Config()),
	})
	if err != nil {
		return
	}

	for {
		var params pipeline.Params
		if err := conn.ReadJSON(&params); err != nil {
			var (
				syntax   *json.SyntaxError
				mismatch *json.UnmarshalTypeError
			)
			if errors.As(err, &syntax) || errors.As(err, &mismatch) {
				if s.write(conn, ErrorResponse{Type: TypeError, Error: "malformed parameters"}) != nil {
					return
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", "session", id, "error", err)
			}
			return
		}

		// keep the session alive while the client is active
		s.sessions.Get(id)

		if err := s.write(conn, s.process(id, track, params)); err != nil {
			return
		}
	}
}

func (s *Server) process(id string, track *pipeline.Track, params pipeline.Params) any {
	start := time.Now()
	bounded := params.Bound(s.pipe.Config())

	res, err := s.pipe.Process(s.ctx, track, bounded)
	if err != nil {
		s.log.Warn("processing failed", "session", id, "params", bounded, "error", err)
		return ErrorResponse{Type: TypeError, Error: err.Error()}
	}

	msg, err := newResultMessage(res)
	if err != nil {
		s.log.Error("rendering result", "session", id, "error", err)
		return ErrorResponse{Type: TypeError, Error: err.Error()}
	}

	s.log.Debug("result sent",
		"session", id,
		"rate", bounded.TargetRate,
		"bits", bounded.BitDepth,
		"took", time.Since(start))
	return msg
}

func (s *Server) write(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteJSON(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
