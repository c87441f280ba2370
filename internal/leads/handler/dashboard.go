package handler

import (
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

func (h *Handler) TaskStats(c *gin.Context) {
	who := actor(c)
	stats, err := h.dashboard.TaskStats(c.Request.Context(), who.VendorID, who.UserID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "task stats fetched", stats)
}

func (h *Handler) StatusCounts(c *gin.Context) {
	who := actor(c)
	counts, err := h.dashboard.StatusWiseCounts(c.Request.Context(), who.VendorID, who.UserID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "status counts fetched", counts)
}

func (h *Handler) Performance(c *gin.Context) {
	who := actor(c)
	perf, err := h.dashboard.Performance(c.Request.Context(), who.VendorID, who.UserID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "performance fetched", perf)
}
