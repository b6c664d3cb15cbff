package services

import (
	"context"
	"errors"
	"strings"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/realtime"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/validator"
	"jobboard_backend/pkg/apperrors"
)

type JobService interface {
	CreateJob(ctx context.Context, actor auth.Identity, req *dto.CreateJobRequest) (*models.JobPosting, error)
	UpdateJob(ctx context.Context, actor auth.Identity, jobID string, req *dto.UpdateJobRequest) (*models.JobPosting, error)
	DeleteJob(ctx context.Context, actor auth.Identity, jobID string) error
	GetJob(ctx context.Context, jobID string) (*models.JobPosting, error)
	ListJobs(ctx context.Context, filter *dto.JobFilter) ([]models.JobPosting, error)
	ListJobsForCreator(ctx context.Context, actor auth.Identity) ([]models.JobPosting, error)
}

type jobService struct {
	jobRepo   repositories.JobRepository
	broker    realtime.Broker
	validator *validator.Validator
}

func NewJobService(jobRepo repositories.JobRepository, broker realtime.Broker, v *validator.Validator) JobService {
	return &jobService{
		jobRepo:   jobRepo,
		broker:    broker,
		validator: v,
	}
}

func (s *jobService) CreateJob(ctx context.Context, actor auth.Identity, req *dto.CreateJobRequest) (*models.JobPosting, error) {
	if !actor.Can(auth.PermJobsWrite) {
		return nil, apperrors.ErrCreatorRoleRequired
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	job := &models.JobPosting{
		CreatorID:   actor.UserID,
		Title:       strings.TrimSpace(req.Title),
		Location:    strings.TrimSpace(req.Location),
		Salary:      *req.Salary,
		Description: req.Description,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		logger.CtxWithError(ctx, "Failed to create job", err)
		return nil, handleJobError(err)
	}

	logger.CtxInfo(ctx, "Job created", "job_id", job.ID)
	return job, nil
}

func (s *jobService) UpdateJob(ctx context.Context, actor auth.Identity, jobID string, req *dto.UpdateJobRequest) (*models.JobPosting, error) {
	if !actor.Can(auth.PermJobsWrite) {
		return nil, apperrors.ErrCreatorRoleRequired
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	job, err := s.ownedJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.Salary != nil {
		job.Salary = *req.Salary
	}
	if req.Description != nil {
		job.Description = *req.Description
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		logger.CtxWithError(ctx, "Failed to update job", err, "job_id", jobID)
		return nil, handleJobError(err)
	}
	return job, nil
}

// DeleteJob удаляет вакансию. Отклики остаются, но перестают учитываться в счётчике.
func (s *jobService) DeleteJob(ctx context.Context, actor auth.Identity, jobID string) error {
	if !actor.Can(auth.PermJobsWrite) {
		return apperrors.ErrCreatorRoleRequired
	}
	if _, err := s.ownedJob(ctx, actor, jobID); err != nil {
		return err
	}

	if err := s.jobRepo.Delete(ctx, jobID); err != nil {
		logger.CtxWithError(ctx, "Failed to delete job", err, "job_id", jobID)
		return handleJobError(err)
	}

	publish(ctx, s.broker, realtime.UserTopic(actor.UserID))
	logger.CtxInfo(ctx, "Job deleted", "job_id", jobID)
	return nil
}

func (s *jobService) GetJob(ctx context.Context, jobID string) (*models.JobPosting, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, handleJobError(err)
	}
	return job, nil
}

// ListJobs - каталог для соискателей; nil-фильтр отдаёт все вакансии
func (s *jobService) ListJobs(ctx context.Context, filter *dto.JobFilter) ([]models.JobPosting, error) {
	var criteria models.JobFilter
	if filter != nil {
		if err := validate(s.validator, filter); err != nil {
			return nil, err
		}
		if filter.MinSalary != nil && filter.MaxSalary != nil && *filter.MaxSalary < *filter.MinSalary {
			return nil, apperrors.ValidationError(map[string]string{
				"max_salary": "Must be greater than or equal to min_salary",
			})
		}
		criteria = models.JobFilter{
			Query:     filter.Query,
			MinSalary: filter.MinSalary,
			MaxSalary: filter.MaxSalary,
		}
	}

	jobs, err := s.jobRepo.Search(ctx, criteria)
	if err != nil {
		return nil, handleJobError(err)
	}
	return jobs, nil
}

func (s *jobService) ListJobsForCreator(ctx context.Context, actor auth.Identity) ([]models.JobPosting, error) {
	if !actor.Can(auth.PermJobsWrite) {
		return nil, apperrors.ErrCreatorRoleRequired
	}
	jobs, err := s.jobRepo.FindByCreator(ctx, actor.UserID)
	if err != nil {
		return nil, handleJobError(err)
	}
	return jobs, nil
}

func (s *jobService) ownedJob(ctx context.Context, actor auth.Identity, jobID string) (*models.JobPosting, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, handleJobError(err)
	}
	if !job.IsOwnedBy(actor.UserID) {
		return nil, apperrors.ErrNotJobOwner
	}
	return job, nil
}

func handleJobError(err error) error {
	if errors.Is(err, repositories.ErrJobNotFound) {
		return apperrors.ErrStaleReference(err, "job", "Job not found")
	}
	return apperrors.ErrStore(err)
}
