package repositories

import (
	"context"
	"errors"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDuplicateApplication = errors.New("application for this job already exists")
	// ErrStatusConflict - статус уже не тот, из которого разрешён переход
	ErrStatusConflict = errors.New("application status changed concurrently")
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*models.Application, error)
	FindByChannel(ctx context.Context, key models.ChannelKey) (*models.Application, error)
	FindByJob(ctx context.Context, jobID string) ([]models.Application, error)
	FindByApplicant(ctx context.Context, applicantID string) ([]models.Application, error)
	FindByJobs(ctx context.Context, jobIDs []string) ([]models.Application, error)
	// FindAcceptedForUser - принятые отклики, где пользователь соискатель или работодатель
	FindAcceptedForUser(ctx context.Context, userID string) ([]models.Application, error)
	CountByJobsAndStatus(ctx context.Context, jobIDs []string, status models.ApplicationStatus) (int64, error)
	// UpdateStatus - условное обновление: срабатывает только если текущий статус равен from
	UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error
}

type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) Create(ctx context.Context, app *models.Application) error {
	err := r.db.WithContext(ctx).Create(app).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateApplication
	}
	return err
}

func (r *ApplicationRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Application, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *ApplicationRepositoryImpl) FindByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*models.Application, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("job_id = ? AND applicant_id = ?", jobID, applicantID))
}

func (r *ApplicationRepositoryImpl) FindByChannel(ctx context.Context, key models.ChannelKey) (*models.Application, error) {
	return r.first(ctx, r.db.WithContext(ctx).
		Where("job_id = ? AND creator_id = ? AND applicant_id = ?", key.JobID, key.CreatorID, key.ApplicantID))
}

func (r *ApplicationRepositoryImpl) first(_ context.Context, q *gorm.DB) (*models.Application, error) {
	var app models.Application
	if err := q.First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) FindByApplicant(ctx context.Context, applicantID string) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) FindByJobs(ctx context.Context, jobIDs []string) ([]models.Application, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("job_id IN ?", jobIDs).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) FindAcceptedForUser(ctx context.Context, userID string) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ApplicationStatusAccepted).
		Where(r.db.Where("applicant_id = ?", userID).Or("creator_id = ?", userID)).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) CountByJobsAndStatus(ctx context.Context, jobIDs []string, status models.ApplicationStatus) (int64, error) {
	if len(jobIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_id IN ? AND status = ?", jobIDs, status).
		Count(&count).Error
	return count, err
}

func (r *ApplicationRepositoryImpl) UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	// ничего не обновили: либо отклика нет, либо статус уже другой
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return ErrStatusConflict
}
