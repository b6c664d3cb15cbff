package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService  services.ApplicationService
	notificationService services.NotificationService
}

func NewApplicationHandler(
	base *BaseHandler,
	applicationService services.ApplicationService,
	notificationService services.NotificationService,
) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:         base,
		applicationService:  applicationService,
		notificationService: notificationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	creatorOnly := middleware.RoleMiddleware(models.UserRoleCreator)
	employeeOnly := middleware.RoleMiddleware(models.UserRoleEmployee)

	jobs := r.Group("/jobs/:jobId/applications")
	jobs.Use(authMiddleware)
	{
		jobs.POST("", employeeOnly, h.Apply)
		jobs.GET("", creatorOnly, h.ListJobApplications)
	}

	applications := r.Group("/applications")
	applications.Use(authMiddleware)
	{
		// Employee routes
		applications.GET("/my", employeeOnly, h.ListMyApplications)

		// Creator routes
		applications.GET("/received", creatorOnly, h.ListReceivedApplications)
		applications.GET("/pending-count", creatorOnly, h.PendingCount)
		applications.PUT("/:applicationId/accept", creatorOnly, h.Accept)
		applications.PUT("/:applicationId/reject", creatorOnly, h.Reject)

		// Common routes
		applications.GET("/:applicationId", h.GetApplication)
		applications.GET("/:applicationId/channel", h.GetChannel)
	}
}

// --- Employee handlers ---

// Apply godoc
// @Summary Откликнуться на вакансию
// @Tags applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param jobId path string true "ID вакансии"
// @Param application body dto.ApplyRequest true "Анкета"
// @Success 201 {object} dto.ApplicationResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId}/applications [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	jobID, ok := h.IDParam(c, "jobId")
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	app, err := h.applicationService.Apply(c.Request.Context(), actor, jobID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewApplicationResponse(app))
}

// ListMyApplications godoc
// @Summary Мои отклики
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /applications/my [get]
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	apps, err := h.applicationService.ListApplicationsForApplicant(c.Request.Context(), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": dto.NewApplicationResponses(apps),
		"total":        len(apps),
	})
}

// --- Creator handlers ---

// ListJobApplications godoc
// @Summary Отклики на вакансию
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param jobId path string true "ID вакансии"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId}/applications [get]
func (h *ApplicationHandler) ListJobApplications(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	jobID, ok := h.IDParam(c, "jobId")
	if !ok {
		return
	}

	apps, err := h.applicationService.ListApplicationsForJob(c.Request.Context(), actor, jobID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": dto.NewApplicationResponses(apps),
		"total":        len(apps),
	})
}

// ListReceivedApplications godoc
// @Summary Отклики на все мои вакансии
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /applications/received [get]
func (h *ApplicationHandler) ListReceivedApplications(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	apps, err := h.applicationService.ListApplicationsForCreator(c.Request.Context(), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": dto.NewApplicationResponses(apps),
		"total":        len(apps),
	})
}

// PendingCount godoc
// @Summary Число откликов, ждущих решения
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.PendingCountResponse
// @Router /applications/pending-count [get]
func (h *ApplicationHandler) PendingCount(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	count, err := h.notificationService.PendingBadge(c.Request.Context(), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PendingCountResponse{Count: count})
}

// Accept godoc
// @Summary Принять отклик
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param applicationId path string true "ID отклика"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 409 {object} apperrors.ErrorResponse "Отклик уже рассмотрен"
// @Router /applications/{applicationId}/accept [put]
func (h *ApplicationHandler) Accept(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	applicationID, ok := h.IDParam(c, "applicationId")
	if !ok {
		return
	}

	app, err := h.applicationService.Accept(c.Request.Context(), actor, applicationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewApplicationResponse(app))
}

// Reject godoc
// @Summary Отклонить отклик
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param applicationId path string true "ID отклика"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 409 {object} apperrors.ErrorResponse "Отклик уже рассмотрен"
// @Router /applications/{applicationId}/reject [put]
func (h *ApplicationHandler) Reject(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	applicationID, ok := h.IDParam(c, "applicationId")
	if !ok {
		return
	}

	app, err := h.applicationService.Reject(c.Request.Context(), actor, applicationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewApplicationResponse(app))
}

// --- Common handlers ---

// GetApplication godoc
// @Summary Отклик по ID
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param applicationId path string true "ID отклика"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /applications/{applicationId} [get]
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	applicationID, ok := h.IDParam(c, "applicationId")
	if !ok {
		return
	}

	app, err := h.applicationService.GetApplication(c.Request.Context(), actor, applicationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewApplicationResponse(app))
}

// GetChannel godoc
// @Summary Ключ переписки по отклику
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param applicationId path string true "ID отклика"
// @Success 200 {object} dto.ChannelInfo
// @Router /applications/{applicationId}/channel [get]
func (h *ApplicationHandler) GetChannel(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	applicationID, ok := h.IDParam(c, "applicationId")
	if !ok {
		return
	}

	info, err := h.applicationService.ChannelFor(c.Request.Context(), actor, applicationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
