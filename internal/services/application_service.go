package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/metrics"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/realtime"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/validator"
	"jobboard_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type ApplicationService interface {
	Apply(ctx context.Context, actor auth.Identity, jobID string, req *dto.ApplyRequest) (*models.Application, error)
	Accept(ctx context.Context, actor auth.Identity, applicationID string) (*models.Application, error)
	Reject(ctx context.Context, actor auth.Identity, applicationID string) (*models.Application, error)

	GetApplication(ctx context.Context, actor auth.Identity, applicationID string) (*models.Application, error)
	ListApplicationsForJob(ctx context.Context, actor auth.Identity, jobID string) ([]models.Application, error)
	ListApplicationsForApplicant(ctx context.Context, actor auth.Identity) ([]models.Application, error)
	ListApplicationsForCreator(ctx context.Context, actor auth.Identity) ([]models.Application, error)

	// PendingCount - pending-отклики на текущие вакансии работодателя, считается заново на каждый вызов
	PendingCount(ctx context.Context, creatorID string) (int64, error)
	ChannelFor(ctx context.Context, actor auth.Identity, applicationID string) (*dto.ChannelInfo, error)
}

type applicationService struct {
	appRepo   repositories.ApplicationRepository
	jobRepo   repositories.JobRepository
	broker    realtime.Broker
	validator *validator.Validator
	now       func() time.Time
}

func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	broker realtime.Broker,
	v *validator.Validator,
) ApplicationService {
	return &applicationService{
		appRepo:   appRepo,
		jobRepo:   jobRepo,
		broker:    broker,
		validator: v,
		now:       time.Now,
	}
}

// CanMessage - переписка открыта только у принятого отклика
func CanMessage(app *models.Application) bool {
	return app.CanMessage()
}

func (s *applicationService) Apply(ctx context.Context, actor auth.Identity, jobID string, req *dto.ApplyRequest) (*models.Application, error) {
	if !actor.Can(auth.PermApplicationsCreate) {
		return nil, apperrors.ErrEmployeeRoleRequired
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}
	dob, err := time.Parse(dto.DateLayout, req.DateOfBirth)
	if err != nil {
		return nil, apperrors.ValidationError(map[string]string{"date_of_birth": "Must be a date in YYYY-MM-DD format"})
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, handleApplicationError(err)
	}
	if job.IsOwnedBy(actor.UserID) {
		return nil, apperrors.ErrCannotApplyToOwnJob
	}

	if _, err := s.appRepo.FindByJobAndApplicant(ctx, jobID, actor.UserID); err == nil {
		return nil, apperrors.ErrAlreadyExists(repositories.ErrDuplicateApplication, "application", "You have already applied to this job")
	} else if !errors.Is(err, repositories.ErrApplicationNotFound) {
		return nil, handleApplicationError(err)
	}

	app := &models.Application{
		JobID:       job.ID,
		ApplicantID: actor.UserID,
		JobTitle:    job.Title,
		CreatorID:   job.CreatorID,
		Status:      models.ApplicationStatusPending,
		Profile: models.ApplicantProfile{
			FullName:    strings.TrimSpace(req.FullName),
			FatherName:  strings.TrimSpace(req.FatherName),
			DateOfBirth: datatypes.Date(dob),
			NativePlace: strings.TrimSpace(req.NativePlace),
			NationalID:  req.NationalID,
			Contact:     strings.TrimSpace(req.Contact),
			Age:         req.Age,
			Gender:      strings.ToLower(req.Gender),
			Experience:  *req.Experience,
			Skills:      trimAll(req.Skills),
		},
		AppliedAt: s.now().UTC(),
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		logger.CtxWithError(ctx, "Failed to create application", err, "job_id", jobID)
		return nil, handleApplicationError(err)
	}

	publish(ctx, s.broker, realtime.UserTopic(app.CreatorID))
	logger.CtxInfo(ctx, "Application created", "application_id", app.ID, "job_id", jobID)
	return app, nil
}

func (s *applicationService) Accept(ctx context.Context, actor auth.Identity, applicationID string) (*models.Application, error) {
	return s.transition(ctx, actor, applicationID, models.ApplicationStatusAccepted)
}

func (s *applicationService) Reject(ctx context.Context, actor auth.Identity, applicationID string) (*models.Application, error) {
	return s.transition(ctx, actor, applicationID, models.ApplicationStatusRejected)
}

func (s *applicationService) transition(ctx context.Context, actor auth.Identity, applicationID string, to models.ApplicationStatus) (*models.Application, error) {
	if !actor.Can(auth.PermApplicationsReview) {
		return nil, apperrors.ErrCreatorRoleRequired
	}

	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, handleApplicationError(err)
	}

	// владелец проверяется по текущей вакансии, не по снимку
	job, err := s.jobRepo.FindByID(ctx, app.JobID)
	if err != nil {
		return nil, handleApplicationError(err)
	}
	if !job.IsOwnedBy(actor.UserID) {
		return nil, apperrors.ErrNotJobOwner
	}

	if !models.CanTransition(app.Status, to) {
		return nil, apperrors.ErrInvalidStatus("application", "Application is already "+string(app.Status))
	}

	if err := s.appRepo.UpdateStatus(ctx, app.ID, app.Status, to); err != nil {
		if !errors.Is(err, repositories.ErrStatusConflict) {
			logger.CtxWithError(ctx, "Failed to update application status", err, "application_id", app.ID)
		}
		return nil, handleApplicationError(err)
	}
	app.Status = to

	metrics.RecordTransition(string(to))
	publish(ctx, s.broker, realtime.UserTopic(app.CreatorID))
	publish(ctx, s.broker, realtime.UserTopic(app.ApplicantID))
	logger.CtxInfo(ctx, "Application status changed", "application_id", app.ID, "status", to)
	return app, nil
}

func (s *applicationService) GetApplication(ctx context.Context, actor auth.Identity, applicationID string) (*models.Application, error) {
	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, handleApplicationError(err)
	}
	if !app.IsParticipant(actor.UserID) {
		return nil, apperrors.ErrApplicationAccessDenied
	}
	return app, nil
}

func (s *applicationService) ListApplicationsForJob(ctx context.Context, actor auth.Identity, jobID string) ([]models.Application, error) {
	if !actor.Can(auth.PermApplicationsReview) {
		return nil, apperrors.ErrCreatorRoleRequired
	}
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, handleApplicationError(err)
	}
	if !job.IsOwnedBy(actor.UserID) {
		return nil, apperrors.ErrNotJobOwner
	}

	apps, err := s.appRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, handleApplicationError(err)
	}
	return apps, nil
}

func (s *applicationService) ListApplicationsForApplicant(ctx context.Context, actor auth.Identity) ([]models.Application, error) {
	if !actor.Can(auth.PermApplicationsCreate) {
		return nil, apperrors.ErrEmployeeRoleRequired
	}
	apps, err := s.appRepo.FindByApplicant(ctx, actor.UserID)
	if err != nil {
		return nil, handleApplicationError(err)
	}
	return apps, nil
}

// ListApplicationsForCreator - отклики на текущие вакансии работодателя
func (s *applicationService) ListApplicationsForCreator(ctx context.Context, actor auth.Identity) ([]models.Application, error) {
	if !actor.Can(auth.PermApplicationsReview) {
		return nil, apperrors.ErrCreatorRoleRequired
	}
	jobIDs, err := s.currentJobIDs(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	apps, err := s.appRepo.FindByJobs(ctx, jobIDs)
	if err != nil {
		return nil, handleApplicationError(err)
	}
	return apps, nil
}

func (s *applicationService) PendingCount(ctx context.Context, creatorID string) (int64, error) {
	jobIDs, err := s.currentJobIDs(ctx, creatorID)
	if err != nil {
		return 0, err
	}
	count, err := s.appRepo.CountByJobsAndStatus(ctx, jobIDs, models.ApplicationStatusPending)
	if err != nil {
		return 0, handleApplicationError(err)
	}
	return count, nil
}

func (s *applicationService) ChannelFor(ctx context.Context, actor auth.Identity, applicationID string) (*dto.ChannelInfo, error) {
	app, err := s.GetApplication(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	return &dto.ChannelInfo{
		ApplicationID: app.ID,
		ChannelKey:    app.ChannelKey().String(),
		Reachable:     app.CanMessage(),
		Status:        app.Status,
		Counterpart:   app.Counterpart(actor.UserID),
		JobTitle:      app.JobTitle,
		AppliedAt:     app.AppliedAt,
	}, nil
}

func (s *applicationService) currentJobIDs(ctx context.Context, creatorID string) ([]string, error) {
	jobs, err := s.jobRepo.FindByCreator(ctx, creatorID)
	if err != nil {
		return nil, handleApplicationError(err)
	}
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	return ids, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func handleApplicationError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrApplicationNotFound):
		return apperrors.ErrStaleReference(err, "application", "Application not found")
	case errors.Is(err, repositories.ErrJobNotFound):
		return apperrors.ErrStaleReference(err, "job", "Job no longer exists")
	case errors.Is(err, repositories.ErrDuplicateApplication):
		return apperrors.ErrAlreadyExists(err, "application", "You have already applied to this job")
	case errors.Is(err, repositories.ErrStatusConflict):
		return apperrors.ErrInvalidStatus("application", "Application is no longer pending")
	default:
		return apperrors.ErrStore(err)
	}
}
