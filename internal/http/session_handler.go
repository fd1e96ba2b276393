package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/mrirakib04/sks-web/internal/session"
)

type Sessions interface {
	UserSource
	Login(ctx context.Context, id session.Identity) (domain.User, error)
	Logout(ctx context.Context) error
}

type NoticeSource interface {
	Drain() []notify.Notice
}

type SessionHandler struct {
	sessions Sessions
	notices  NoticeSource
	timeout  time.Duration
	maxBody  int64
}

func NewSessionHandler(sessions Sessions, notices NoticeSource, timeout time.Duration, maxBody int64) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		notices:  notices,
		timeout:  timeout,
		maxBody:  maxBody,
	}
}

// POST /api/v1/session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var id session.Identity
	if !decodeJSON(w, r, h.maxBody, &id) {
		return
	}

	user, err := h.sessions.Login(ctx, id)
	if errors.Is(err, session.ErrInvalidEmail) {
		respondError(w, http.StatusBadRequest, "invalid_email", err.Error())
		return
	}
	if err != nil {
		handleBackendError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GET /api/v1/session
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.User()
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DELETE /api/v1/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.sessions.Logout(ctx); err != nil {
		handleBackendError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/notices drains the pending notices.
func (h *SessionHandler) Notices(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.notices.Drain())
}
