package handler

import (
	"net/http"
	"strconv"

	"leadflow_backend/internal/leads/dashboard"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/readiness"
	"leadflow_backend/internal/leads/tasks"
	"leadflow_backend/internal/leads/transition"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Services are the leads use cases the handler exposes.
type Services struct {
	Management *management.Service
	Transition *transition.Executor
	Tasks      *tasks.Service
	Readiness  *readiness.Checker
	Dashboard  *dashboard.Service
}

type Handler struct {
	mgmt      *management.Service
	exec      *transition.Executor
	tasks     *tasks.Service
	readiness *readiness.Checker
	dashboard *dashboard.Service
	val       *validator.Validator
}

func New(svc Services, val *validator.Validator) *Handler {
	return &Handler{
		mgmt:      svc.Management,
		exec:      svc.Transition,
		tasks:     svc.Tasks,
		readiness: svc.Readiness,
		dashboard: svc.Dashboard,
		val:       val,
	}
}

// RegisterRoutes mounts every leads route on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	leads.POST("", h.Create)
	leads.GET("/stage/:stage", h.ListByStage)
	leads.GET("/:id/timeline", h.Timeline)
	leads.PATCH("/:id/activity-status", h.UpdateActivityStatus)
	leads.POST("/:id/transitions/:stage", h.Transition)
	leads.POST("/:id/tech-check/review", h.ReviewTechCheck)
	leads.GET("/:id/readiness/:gate", h.Readiness)
	leads.POST("/:id/tasks/:target", h.AssignTask)
	leads.POST("/:id/mappings", h.MapUsers)
	leads.GET("/:id/documents/:docId/url", h.DocumentURL)

	rg.POST("/tasks/:taskId/complete", h.CompleteTask)

	dash := rg.Group("/dashboard")
	dash.GET("/task-stats", h.TaskStats)
	dash.GET("/status-counts", h.StatusCounts)
	dash.GET("/performance", h.Performance)
}

// actor reads the caller set by the auth middleware. An unauthenticated
// context yields zero ids, which every service rejects.
func actor(c *gin.Context) management.Actor {
	id, _ := httpkit.GetIdentity(c)
	return management.Actor{VendorID: id.VendorID, UserID: id.UserID}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the body, writing the error response itself.
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return false
	}
	return h.validate(c, req)
}

func (h *Handler) validate(c *gin.Context, req interface{}) bool {
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return false
	}
	return true
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.mgmt.Create(c.Request.Context(), actor(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, "lead created", lead)
}

func (h *Handler) ListByStage(c *gin.Context) {
	var query transport.ListLeadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if !h.validate(c, &query) {
		return
	}

	page, err := h.mgmt.ListByStage(c.Request.Context(), actor(c), c.Param("stage"), query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "leads fetched", page)
}

func (h *Handler) Timeline(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	logs, err := h.mgmt.Timeline(c.Request.Context(), actor(c), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "timeline fetched", logs)
}

func (h *Handler) UpdateActivityStatus(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateActivityStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.mgmt.UpdateActivityStatus(c.Request.Context(), actor(c), leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "activity status updated", resp)
}

func (h *Handler) MapUsers(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.MapUsersRequest
	if !h.bindJSON(c, &req) {
		return
	}

	mappings, err := h.mgmt.MapUsers(c.Request.Context(), actor(c), leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, "users mapped", mappings)
}

func (h *Handler) DocumentURL(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	docID, ok := parseID(c, "docId")
	if !ok {
		return
	}

	resp, err := h.mgmt.DocumentURL(c.Request.Context(), actor(c), leadID, docID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "document url created", resp)
}
