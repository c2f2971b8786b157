package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zlnvch/notekeep/models"
	"github.com/zlnvch/notekeep/service"
)

const (
	SessionCookieName = "session"
	maxBodyBytes      = 1 << 20
)

type Handler struct {
	Service *service.Service
	Logger  *zap.Logger
}

func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: svc, Logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User models.PublicUser `json:"user"`
}

type okResponse struct {
	Ok bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type registerInfoResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
}

// HandleRegisterInfo tells a browser that lands on the register URL how to use it.
func (h *Handler) HandleRegisterInfo(w http.ResponseWriter, r *http.Request) {
	h.sendResponse(w, http.StatusOK, registerInfoResponse{
		Status: "ok",
		Info:   "Use POST to create an account at /auth/register",
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.Service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	h.sendResponse(w, http.StatusCreated, userResponse{User: user.Public()})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	h.sendResponse(w, http.StatusOK, userResponse{User: user.Public()})
}

// HandleLogout only clears the cookie; the token itself stays valid
// until it expires.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleListNotes answers with a bare array unless a page parameter is
// present, in which case it answers like HandleListNotesPage.
func (h *Handler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("page") {
		h.HandleListNotesPage(w, r)
		return
	}

	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	notes, err := h.Service.ListNotesFlat(r.Context(), claims.Subject, parseFilter(q), parseInt(q.Get("limit")))
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendResponse(w, http.StatusOK, notes)
}

func (h *Handler) HandleListNotesPage(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := h.Service.ListNotes(r.Context(), claims.Subject, parseFilter(q), parseInt(q.Get("page")), parseInt(q.Get("limit")))
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendResponse(w, http.StatusOK, page)
}

type createNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Labels   []string `json:"labels"`
	Color    string   `json:"color"`
	Pinned   bool     `json:"pinned"`
	Archived bool     `json:"archived"`
}

func (h *Handler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req createNoteRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	note, err := h.Service.CreateNote(r.Context(), claims.Subject, service.NoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Labels:   req.Labels,
		Color:    req.Color,
		Pinned:   req.Pinned,
		Archived: req.Archived,
	})
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendResponse(w, http.StatusCreated, note)
}

func (h *Handler) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	note, err := h.Service.GetNote(r.Context(), claims.Subject, r.PathValue("id"))
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendResponse(w, http.StatusOK, note)
}

func (h *Handler) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var patch models.NotePatch
	if !h.decodeBody(w, r, &patch) {
		return
	}

	note, err := h.Service.UpdateNote(r.Context(), claims.Subject, r.PathValue("id"), patch)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendResponse(w, http.StatusOK, note)
}

func (h *Handler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteNote(r.Context(), claims.Subject, r.PathValue("id")); err != nil {
		h.sendError(w, err)
		return
	}
	h.sendResponse(w, http.StatusOK, okResponse{Ok: true})
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (service.SessionClaims, bool) {
	token := ""
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		token = cookie.Value
	}

	claims, err := h.Service.Authenticate(token)
	if err != nil {
		h.sendError(w, err)
		return service.SessionClaims{}, false
	}
	return claims, true
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Service.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) sendError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	message := err.Error()
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, message)
	case errors.Is(err, service.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, message)
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, message)
	case errors.Is(err, service.ErrConflict):
		WriteError(w, http.StatusConflict, message)
	default:
		h.Logger.Error("request failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) sendResponse(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Warn("failed to encode response", zap.Error(err))
	}
}

// WriteError answers with {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// parseFilter ignores boolean parameters other than "true" and "false".
func parseFilter(q url.Values) models.NoteFilter {
	return models.NoteFilter{
		Query:    q.Get("query"),
		Label:    q.Get("label"),
		Pinned:   parseBool(q.Get("pinned")),
		Archived: parseBool(q.Get("archived")),
	}
}

func parseBool(v string) *bool {
	switch v {
	case "true":
		b := true
		return &b
	case "false":
		b := false
		return &b
	}
	return nil
}

// parseInt returns 0, which the service treats as the default, for
// anything unparseable.
func parseInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
