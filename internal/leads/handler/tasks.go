package handler

import (
	"fmt"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/tasks"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// followUpTarget is the route target for tasks that never move the lead.
const followUpTarget = "follow-up"

func (h *Handler) AssignTask(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.AssignTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	who := actor(c)
	in := tasks.AssignInput{
		VendorID:   who.VendorID,
		LeadID:     leadID,
		ActorID:    who.UserID,
		AssigneeID: req.AssigneeID,
		TaskType:   req.TaskType,
		DueDate:    req.DueDate.Time,
		Remark:     req.Remark,
	}
	target := c.Param("target")
	if target == followUpTarget {
		in.TaskType = domain.FollowUpTaskType
	} else {
		tag, ok := domain.ParseStatusSlug(target)
		if !ok {
			httpkit.HandleError(c, apperr.Validation(fmt.Sprintf("unknown task target %q", target)))
			return
		}
		in.TargetStage = tag
	}

	result, err := h.tasks.Assign(c.Request.Context(), in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result.Log.Description, management.ToAssignTaskResponse(result))
}

func (h *Handler) CompleteTask(c *gin.Context) {
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}
	var req transport.CompleteTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	who := actor(c)
	task, err := h.tasks.Complete(c.Request.Context(), tasks.CompleteInput{
		VendorID:      who.VendorID,
		TaskID:        taskID,
		ActorID:       who.UserID,
		ClosingRemark: req.ClosingRemark,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "task completed", management.ToTaskResponse(task))
}
