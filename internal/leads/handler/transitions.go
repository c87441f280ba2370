package handler

import (
	"fmt"
	"io"

	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/readiness"
	"leadflow_backend/internal/leads/transition"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Transition runs one stage transition from a multipart form. Every file
// field of the form is passed on; the executor rejects fields the stage
// does not accept.
func (h *Handler) Transition(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	stage := c.Param("stage")
	req, ok := transport.NewStageRequest(stage)
	if !ok {
		httpkit.HandleError(c, apperr.Validation(fmt.Sprintf("unknown stage %q", stage)))
		return
	}
	if err := c.ShouldBind(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest).WithDetails(err.Error()))
		return
	}
	if !h.validate(c, req) {
		return
	}

	who := actor(c)
	in := transition.Input{
		Stage:    stage,
		VendorID: who.VendorID,
		LeadID:   leadID,
		ActorID:  who.UserID,
		Files:    map[string][]transition.File{},
	}
	if err := req.Apply(&in); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for field, headers := range form.File {
			for _, fh := range headers {
				in.Files[field] = append(in.Files[field], transition.File{
					Name:        fh.Filename,
					ContentType: fh.Header.Get("Content-Type"),
					Size:        fh.Size,
					Open: func() (io.ReadCloser, error) {
						return fh.Open()
					},
				})
			}
		}
	}

	result, err := h.exec.Execute(c.Request.Context(), in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result.Log.Description, management.ToTransitionResponse(result))
}

func (h *Handler) ReviewTechCheck(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.TechCheckReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	who := actor(c)
	result, err := h.exec.ReviewTechCheck(c.Request.Context(), transition.ReviewInput{
		VendorID:    who.VendorID,
		LeadID:      leadID,
		ActorID:     who.UserID,
		DocumentIDs: req.DocumentIDs,
		Approve:     *req.Approve,
		Remark:      req.Remark,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result.Log.Description, management.ToTechCheckReviewResponse(result))
}

func (h *Handler) Readiness(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	gate, ok := readiness.ParseGate(c.Param("gate"))
	if !ok {
		httpkit.HandleError(c, apperr.Validation(fmt.Sprintf("unknown readiness gate %q", c.Param("gate"))))
		return
	}

	report, err := h.readiness.Check(c.Request.Context(), actor(c).VendorID, leadID, gate)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "readiness checked", report)
}
