package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "userdir/internal/adapter/http/helper"
	. "userdir/internal/adapter/http/validation"
	"userdir/internal/core/model/request"
	"userdir/internal/core/model/response"
	"userdir/internal/core/port"
	"userdir/internal/core/util"
	"userdir/pkg/config"
	. "userdir/pkg/tracing"
)

// SessionHandler drives the per-screen view state: filters, the edit
// modal and the detail panel.
type SessionHandler struct {
	sessions port.SessionService
	Logger   *config.Logger
}

func NewSessionHandler(sessions port.SessionService, logger *config.Logger) *SessionHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &SessionHandler{
		sessions: sessions,
		Logger:   logger,
	}
}

// respond renders the full snapshot after a state change.
func (h *SessionHandler) respond(c *gin.Context, status int, err error) {
	if err != nil {
		SendDomainError(c, err)
		return
	}

	sid := c.Param("sid")

	snap, err := h.sessions.Snapshot(c.Request.Context(), sid)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	SendSuccess(c, status, response.SessionResponse{
		ID:      sid,
		State:   snap.State,
		Visible: response.NewUserResponses(snap.Visible),
		Cities:  snap.Cities,
	})
}

func (h *SessionHandler) OpenSession(c *gin.Context) {
	ctx := c.Request.Context()

	sid, _ := h.sessions.Open()

	h.Logger.Ctx(ctx).Debug("Session opened", zap.String("session", sid))

	c.Params = append(c.Params, gin.Param{Key: "sid", Value: sid})
	h.respond(c, http.StatusCreated, nil)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	h.respond(c, http.StatusOK, nil)
}

func (h *SessionHandler) CloseSession(c *gin.Context) {
	h.sessions.Close(c.Param("sid"))

	SendSuccess(c, http.StatusOK, nil, "Session closed")
}

func (h *SessionHandler) SetFilters(c *gin.Context) {
	params, err := util.ParamsToMap[request.ViewQueryRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	_, err = h.sessions.SetFilters(c.Param("sid"), params.ToQuery())
	h.respond(c, http.StatusOK, err)
}

// OpenDraft opens the edit modal: blank with no ?id, otherwise loaded
// from the record with that id.
func (h *SessionHandler) OpenDraft(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.session.OpenDraft", []attribute.KeyValue{
		attribute.String("handler.operation", "OpenDraft"),
	})
	defer span.End()

	var userID *int64

	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			SendBadRequestError(c, "id", "id must be an integer")
			return
		}

		userID = &id
		span.SetAttributes(attribute.Int64("user.id", id))
	}

	_, err := h.sessions.OpenDraft(ctx, c.Param("sid"), userID)
	if err != nil {
		AddSpanError(span, err)
	}

	h.respond(c, http.StatusOK, err)
}

func (h *SessionHandler) EditDraft(c *gin.Context) {
	params, err := util.ParamsToMap[request.UserPatchRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	_, err = h.sessions.EditDraft(c.Param("sid"), params.ToPatch())
	h.respond(c, http.StatusOK, err)
}

func (h *SessionHandler) SaveDraft(c *gin.Context) {
	ctx := c.Request.Context()

	saved, err := h.sessions.SaveDraft(ctx, c.Param("sid"))
	if err != nil {
		SendDomainError(c, err)
		return
	}

	h.Logger.Ctx(ctx).Info("Draft saved", zap.Int64("id", saved.ID))

	h.respond(c, http.StatusOK, nil)
}

func (h *SessionHandler) CancelDraft(c *gin.Context) {
	_, err := h.sessions.CancelDraft(c.Param("sid"))
	h.respond(c, http.StatusOK, err)
}

func (h *SessionHandler) SelectUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	_, err := h.sessions.Select(c.Request.Context(), c.Param("sid"), id)
	h.respond(c, http.StatusOK, err)
}

func (h *SessionHandler) CloseDetail(c *gin.Context) {
	_, err := h.sessions.CloseDetail(c.Param("sid"))
	h.respond(c, http.StatusOK, err)
}

func (h *SessionHandler) ToggleTheme(c *gin.Context) {
	_, err := h.sessions.ToggleTheme(c.Param("sid"))
	h.respond(c, http.StatusOK, err)
}
