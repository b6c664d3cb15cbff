package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{
		BaseHandler: base,
		jobService:  jobService,
	}
}

func (h *JobHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	jobs := r.Group("/jobs")
	{
		// Public routes
		jobs.GET("", h.ListJobs)
		jobs.GET("/:jobId", h.GetJob)

		// Creator routes
		creator := jobs.Group("")
		creator.Use(authMiddleware, middleware.RoleMiddleware(models.UserRoleCreator))
		creator.GET("/mine", h.ListMyJobs)
		creator.POST("", h.CreateJob)
		creator.PUT("/:jobId", h.UpdateJob)
		creator.DELETE("/:jobId", h.DeleteJob)
	}
}

// CreateJob godoc
// @Summary Создать вакансию
// @Tags jobs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param job body dto.CreateJobRequest true "Вакансия"
// @Success 201 {object} models.JobPosting
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// UpdateJob godoc
// @Summary Изменить свою вакансию
// @Description Отклики хранят снимок названия и не меняются
// @Tags jobs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param jobId path string true "ID вакансии"
// @Param job body dto.UpdateJobRequest true "Изменяемые поля"
// @Success 200 {object} models.JobPosting
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId} [put]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	jobID, ok := h.IDParam(c, "jobId")
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateJob(c.Request.Context(), actor, jobID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJob godoc
// @Summary Удалить свою вакансию
// @Tags jobs
// @Security BearerAuth
// @Produce json
// @Param jobId path string true "ID вакансии"
// @Success 200 {object} map[string]string
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId} [delete]
func (h *JobHandler) DeleteJob(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	jobID, ok := h.IDParam(c, "jobId")
	if !ok {
		return
	}

	if err := h.jobService.DeleteJob(c.Request.Context(), actor, jobID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

// GetJob godoc
// @Summary Вакансия по ID
// @Tags jobs
// @Produce json
// @Param jobId path string true "ID вакансии"
// @Success 200 {object} models.JobPosting
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := h.IDParam(c, "jobId")
	if !ok {
		return
	}

	job, err := h.jobService.GetJob(c.Request.Context(), jobID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs godoc
// @Summary Поиск вакансий
// @Description Подстрока q ищется в названии и городе без учёта регистра
// @Tags jobs
// @Produce json
// @Param q query string false "Название или город"
// @Param min_salary query int false "Зарплата от"
// @Param max_salary query int false "Зарплата до"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	var filter dto.JobFilter
	if !h.BindAndValidate_Query(c, &filter) {
		return
	}

	jobs, err := h.jobService.ListJobs(c.Request.Context(), &filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// ListMyJobs godoc
// @Summary Мои вакансии
// @Tags jobs
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /jobs/mine [get]
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListJobsForCreator(c.Request.Context(), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}
