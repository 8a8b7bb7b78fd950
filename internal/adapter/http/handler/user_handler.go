package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "userdir/internal/adapter/http/helper"
	. "userdir/internal/adapter/http/validation"
	"userdir/internal/core/domain"
	"userdir/internal/core/model/request"
	"userdir/internal/core/model/response"
	"userdir/internal/core/port"
	"userdir/internal/core/util"
	"userdir/pkg/config"
	. "userdir/pkg/tracing"
)

type UserHandler struct {
	directory port.UserDirectory
	Logger    *config.Logger
}

func NewUserHandler(directory port.UserDirectory, logger *config.Logger) *UserHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &UserHandler{
		directory: directory,
		Logger:    logger,
	}
}

func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		SendBadRequestError(c, "id", "id must be an integer")
		return 0, false
	}

	return id, true
}

// ListUsers renders the directory through the status, city and search
// query parameters.
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.user.ListUsers", []attribute.KeyValue{
		attribute.String("handler.operation", "ListUsers"),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	var params request.ViewQueryRequest

	if err := c.ShouldBindQuery(&params); err != nil {
		SendBadRequestError(c, "query", "Invalid query parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	query := params.ToQuery()
	users := h.directory.View(ctx, query)

	span.SetAttributes(
		attribute.String("filter.status", string(query.Status)),
		attribute.String("filter.city", query.City),
		attribute.Int("result.size", len(users)),
	)

	c.JSON(http.StatusOK, response.UserListResponse{
		Size:  len(users),
		Query: query,
		Data:  response.NewUserResponses(users),
	})
}

func (h *UserHandler) ListCities(c *gin.Context) {
	all := h.directory.List(c.Request.Context())

	SendSuccess(c, http.StatusOK, response.CitiesResponse{
		Cities:  domain.DistinctCities(all),
		Choices: domain.CityChoices(all),
	})
}

// NewDraft hands out a blank record with a fresh id. Nothing is stored.
func (h *UserHandler) NewDraft(c *gin.Context) {
	SendSuccess(c, http.StatusOK, h.directory.NewDraft())
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, found := h.directory.Get(c.Request.Context(), id)
	if !found {
		SendDomainError(c, domain.ErrUserNotFound)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewUserResponse(user))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.ParamsToMap[request.UserRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	record := params.ToRecord()
	if record.ID == 0 {
		record.ID = h.directory.NewDraft().ID
	}

	saved := h.directory.Create(ctx, record)

	h.Logger.Ctx(ctx).Info("User created", zap.Int64("id", saved.ID))

	SendSuccess(c, http.StatusCreated, response.NewUserResponse(saved))
}

// UpsertUser replaces the record at :id or appends it. The path id wins
// over any id in the body.
func (h *UserHandler) UpsertUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseUserID(c)
	if !ok {
		return
	}

	params, err := util.ParamsToMap[request.UserRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	record := params.ToRecord()
	record.ID = id

	saved, created := h.directory.Upsert(ctx, record)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	SendSuccess(c, status, response.NewUserResponse(saved))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	removed := h.directory.Delete(c.Request.Context(), id)

	SendSuccess(c, http.StatusOK, response.DeleteResponse{ID: id, Removed: removed})
}
