package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-formplugin/pkg/form"
	"github.com/goliatone/go-formplugin/pkg/gateway"
	"github.com/goliatone/go-formplugin/pkg/transport/wspeer"
)

// textEdit carries either the plain text of an item or, in HTML, the inner
// markup of its editable element.
type textEdit struct {
	Path []string `json:"path"`
	Text string   `json:"text"`
	HTML *string  `json:"html,omitempty"`
}

type selectEdit struct {
	Path  []string `json:"path"`
	Value string   `json:"value"`
}

type signatureEdit struct {
	Path    []string `json:"path"`
	DataURL string   `json:"dataUrl,omitempty"`
}

type backEdit struct {
	Screen     string  `json:"screen"`
	ActivityID *string `json:"activityId,omitempty"`
}

type responseBody struct {
	Text string `json:"text"`
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *Session)

func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, ok := s.sessions.Get(id)
		if !ok {
			s.writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found: "+id)
			return
		}
		next(w, r, sess)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHost accepts the host connection and runs its session until the host
// disconnects.
func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	peer, err := wspeer.Accept(w, r, s.cfg.PeerOptions())
	if err != nil {
		s.logger.Warn("server: accept host", zap.Error(err))
		return
	}
	defer peer.CloseNow()

	referrer := s.referrerFor(r)
	if referrer == "" {
		referrer = peer.Origin()
	}
	sess := s.newSession(peer, referrer, "ws")
	defer s.sessions.Remove(sess.ID)

	ctx := r.Context()
	if err := sess.Plugin.Init(ctx); err != nil {
		s.logger.Error("server: init session", zap.String("session", sess.ID), zap.Error(err))
		return
	}
	err = peer.Serve(ctx, func(ctx context.Context, ev gateway.Event) {
		sess.Plugin.Receive(ctx, ev)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("server: host connection", zap.String("session", sess.ID), zap.Error(err))
		return
	}
	_ = peer.Close()
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	list := s.sessions.List()
	out := make([]sessionSummary, 0, len(list))
	for _, sess := range list {
		out = append(out, sess.summary())
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// handleCreateSession opens a session from the request body, standing in
// for a host that cannot hold a WebSocket. Outbound frames are kept in the
// session outbox.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	_ = r.Body.Close()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	referrer := s.referrerFor(r)
	sess := s.newSession(&outbox{}, referrer, "http")
	ctx := r.Context()
	if err := sess.Plugin.Init(ctx); err != nil {
		s.sessions.Remove(sess.ID)
		s.writeError(w, http.StatusInternalServerError, "INIT_FAILED", err.Error())
		return
	}

	outcome := gateway.OutcomeNoData
	if len(body) > 0 {
		outcome = sess.Plugin.Receive(ctx, gateway.Event{Data: body, Origin: r.Header.Get("Origin")})
	}
	created := map[string]any{
		"id":       sess.ID,
		"state":    sess.Plugin.State().String(),
		"outcome":  outcome.String(),
		"referrer": referrer,
	}
	if referrer == "" {
		s.logger.Warn("server: session has no referrer", zap.String("session", sess.ID))
		created["warning"] = noReferrerWarning
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, _ *http.Request, sess *Session) {
	s.sessions.Remove(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request, sess *Session) {
	renderer, err := s.renderers.Resolve(r.URL.Query().Get("renderer"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "UNKNOWN_RENDERER", err.Error())
		return
	}
	out, err := renderer.Render(r.Context(), sess.Plugin.View(), s.renderOptions(sess))
	if err != nil {
		s.logger.Error("server: render", zap.String("renderer", renderer.Name()), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "RENDER_FAILED", err.Error())
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleGetResponse(w http.ResponseWriter, _ *http.Request, sess *Session) {
	s.writeResponse(w, sess)
}

func (s *Server) handlePutResponse(w http.ResponseWriter, r *http.Request, sess *Session) {
	var body responseBody
	if !s.decode(w, r, &body) {
		return
	}
	if err := sess.Plugin.EditResponse(body.Text); err != nil {
		s.writeSessionError(w, sess, err)
		return
	}
	s.writeResponse(w, sess)
}

func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request, sess *Session) {
	var body textEdit
	if !s.decode(w, r, &body) {
		return
	}
	if body.HTML != nil {
		s.afterEdit(w, sess, sess.Plugin.SetMarkup(body.Path, *body.HTML))
		return
	}
	s.afterEdit(w, sess, sess.Plugin.SetText(body.Path, body.Text))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, sess *Session) {
	var body selectEdit
	if !s.decode(w, r, &body) {
		return
	}
	s.afterEdit(w, sess, sess.Plugin.Select(body.Path, body.Value))
}

func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request, sess *Session) {
	var body signatureEdit
	if !s.decode(w, r, &body) {
		return
	}
	s.afterEdit(w, sess, sess.Plugin.GenerateSignature(body.Path, body.DataURL))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request, sess *Session) {
	var body backEdit
	if !s.decode(w, r, &body) {
		return
	}
	if err := sess.Plugin.SetBackScreen(body.Screen); err != nil {
		s.writeSessionError(w, sess, err)
		return
	}
	var err error
	if body.ActivityID != nil && body.Screen == form.ScreenActivityByID {
		err = sess.Plugin.SetBackActivityID(*body.ActivityID)
	}
	s.afterEdit(w, sess, err)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request, sess *Session) {
	switch pane := chi.URLParam(r, "pane"); pane {
	case "request":
		sess.Plugin.ToggleRequest()
	case "response":
		sess.Plugin.ToggleResponse()
	default:
		s.writeError(w, http.StatusNotFound, "UNKNOWN_PANE", "unknown pane: "+pane)
		return
	}
	view := sess.Plugin.View()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"requestVisible":  view.RequestVisible,
		"responseVisible": view.ResponseVisible,
		"response":        view.Response,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := sess.Plugin.Submit(r.Context()); err != nil {
		s.writeSessionError(w, sess, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"state": sess.Plugin.State().String()})
}

func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request, sess *Session) {
	alerts := sess.Plugin.Alerts()
	if alerts == nil {
		alerts = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *Server) handleMessages(w http.ResponseWriter, _ *http.Request, sess *Session) {
	if sess.outbox == nil {
		s.writeError(w, http.StatusNotFound, "NO_OUTBOX", "session delivers messages to its host connection")
		return
	}
	messages := sess.Messages()
	if messages == nil {
		messages = []json.RawMessage{}
	}
	out := map[string]any{"messages": messages, "referrer": sess.Referrer}
	if sess.Referrer == "" {
		out["warning"] = noReferrerWarning
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) afterEdit(w http.ResponseWriter, sess *Session, err error) {
	if err != nil {
		s.writeSessionError(w, sess, err)
		return
	}
	s.writeResponse(w, sess)
}

func (s *Server) writeResponse(w http.ResponseWriter, sess *Session) {
	s.writeJSON(w, http.StatusOK, map[string]string{"response": sess.Plugin.Response()})
}

const maxBody = 1 << 20

// noReferrerWarning explains an outbox that never fills: without a referrer
// the plugin has no origin to post to.
const noReferrerWarning = "no referrer: configure plugin.referrer or send X-Plugin-Referrer; outbound messages are dropped"

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := decodeJSON(r, v); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return false
	}
	return true
}
