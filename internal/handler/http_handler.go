package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Owoblo/exam-monitor/internal/domain"
	"github.com/Owoblo/exam-monitor/internal/hub"
	"github.com/Owoblo/exam-monitor/internal/service"
	pkglog "github.com/Owoblo/exam-monitor/pkg/log"
	"github.com/Owoblo/exam-monitor/pkg/response"
)

// HTTPHandler serves the ingest and snapshot endpoints.
type HTTPHandler struct {
	service service.MonitorService
	hub     *hub.Hub
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(svc service.MonitorService, h *hub.Hub) *HTTPHandler {
	return &HTTPHandler{
		service: svc,
		hub:     h,
	}
}

// RegisterRoutes registers the HTTP routes.
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	r.POST("/flag", h.ReportFlag)
	r.GET("/flags", h.ListFlags)
	r.GET("/flags/stats", h.FlagStats)

	r.POST("/live-update", h.UpdateLiveState)
	r.GET("/live-screens", h.LiveScreens)

	signal := r.Group("/signal")
	{
		signal.POST("/offer", h.PostOffer)
		signal.GET("/offers", h.ListOffers)
		signal.POST("/answer", h.PostAnswer)
		signal.GET("/answer/:studentId", h.GetAnswer)
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      response.StatusOK,
		"subscribers": h.hub.Count(),
		"flagExport":  h.service.FlagExport(c.Request.Context()),
	})
}

func (h *HTTPHandler) ReportFlag(c *gin.Context) {
	var req domain.FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	ctx := studentContext(c, req.StudentID)

	if _, err := h.service.ReportFlag(ctx, &req); err != nil {
		h.fail(c, err, "Failed to record flag")
		return
	}

	response.Acknowledge(c, response.StatusReceived)
}

func (h *HTTPHandler) ListFlags(c *gin.Context) {
	response.JSON(c, h.service.Flags(c.Request.Context()))
}

func (h *HTTPHandler) FlagStats(c *gin.Context) {
	response.JSON(c, h.service.FlagStats(c.Request.Context()))
}

func (h *HTTPHandler) UpdateLiveState(c *gin.Context) {
	var req domain.LiveUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	ctx := studentContext(c, req.StudentID)

	if _, err := h.service.UpdateLiveState(ctx, &req); err != nil {
		h.fail(c, err, "Failed to update live state")
		return
	}

	response.Acknowledge(c, response.StatusReceived)
}

func (h *HTTPHandler) LiveScreens(c *gin.Context) {
	response.JSON(c, h.service.LiveScreens(c.Request.Context()))
}

func (h *HTTPHandler) PostOffer(c *gin.Context) {
	var req domain.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	ctx := studentContext(c, req.StudentID)

	if err := h.service.PostOffer(ctx, &req); err != nil {
		h.fail(c, err, "Failed to store offer")
		return
	}

	response.Acknowledge(c, response.StatusOK)
}

func (h *HTTPHandler) ListOffers(c *gin.Context) {
	response.JSON(c, h.service.Offers(c.Request.Context()))
}

func (h *HTTPHandler) PostAnswer(c *gin.Context) {
	var req domain.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	ctx := studentContext(c, req.StudentID)

	if err := h.service.PostAnswer(ctx, &req); err != nil {
		h.fail(c, err, "Failed to store answer")
		return
	}

	response.Acknowledge(c, response.StatusOK)
}

// GetAnswer never fails for an unknown student; the answer is null until posted.
func (h *HTTPHandler) GetAnswer(c *gin.Context) {
	studentID := c.Param("studentId")
	ctx := studentContext(c, studentID)

	answer, _ := h.service.Answer(ctx, studentID)
	response.JSON(c, domain.AnswerResponse{Answer: answer})
}

// studentContext records the student for the access log and scopes the
// request logger to it.
func studentContext(c *gin.Context, studentID string) context.Context {
	c.Set(pkglog.FieldStudentID, studentID)
	return pkglog.WithStudent(c.Request.Context(), studentID)
}

func (h *HTTPHandler) fail(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrValidation) {
		response.BadRequest(c, err.Error())
		return
	}

	l := pkglog.Ctx(c.Request.Context())
	l.Error().Err(err).Msg(msg)
	response.InternalError(c, msg)
}
