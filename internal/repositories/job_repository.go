package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

type JobRepository interface {
	Create(ctx context.Context, job *models.JobPosting) error
	FindByID(ctx context.Context, id string) (*models.JobPosting, error)
	// Update меняет только редактируемые поля; CreatorID не трогается
	Update(ctx context.Context, job *models.JobPosting) error
	Delete(ctx context.Context, id string) error
	// Search - все вакансии, подходящие под фильтр, новые сверху
	Search(ctx context.Context, filter models.JobFilter) ([]models.JobPosting, error)
	FindByCreator(ctx context.Context, creatorID string) ([]models.JobPosting, error)
}

type JobRepositoryImpl struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &JobRepositoryImpl{db: db}
}

func (r *JobRepositoryImpl) Create(ctx context.Context, job *models.JobPosting) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepositoryImpl) FindByID(ctx context.Context, id string) (*models.JobPosting, error) {
	var job models.JobPosting
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) Update(ctx context.Context, job *models.JobPosting) error {
	result := r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"title":       job.Title,
			"location":    job.Location,
			"salary":      job.Salary,
			"description": job.Description,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.JobPosting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) Search(ctx context.Context, filter models.JobFilter) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	query := r.db.WithContext(ctx).Model(&models.JobPosting{})

	if q := strings.TrimSpace(filter.Query); q != "" {
		search := "%" + escapeLike(q) + "%"
		query = query.Where("title ILIKE ? OR location ILIKE ?", search, search)
	}
	if filter.MinSalary != nil {
		query = query.Where("salary >= ?", *filter.MinSalary)
	}
	if filter.MaxSalary != nil {
		query = query.Where("salary <= ?", *filter.MaxSalary)
	}

	err := query.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// escapeLike экранирует спецсимволы LIKE, чтобы поиск был подстрокой, а не шаблоном
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *JobRepositoryImpl) FindByCreator(ctx context.Context, creatorID string) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}
