package memory

import (
	"context"

	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
)

type JobRepository struct {
	store *Store
}

func NewJobRepository(store *Store) repositories.JobRepository {
	return &JobRepository{store: store}
}

func (r *JobRepository) Create(_ context.Context, job *models.JobPosting) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	job.EnsureID()
	now := r.store.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	r.store.jobs[job.ID] = *job
	return nil
}

func (r *JobRepository) FindByID(_ context.Context, id string) (*models.JobPosting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	job, ok := r.store.jobs[id]
	if !ok {
		return nil, repositories.ErrJobNotFound
	}
	return &job, nil
}

func (r *JobRepository) Update(_ context.Context, job *models.JobPosting) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.jobs[job.ID]
	if !ok {
		return repositories.ErrJobNotFound
	}
	current.Title = job.Title
	current.Location = job.Location
	current.Salary = job.Salary
	current.Description = job.Description
	current.UpdatedAt = r.store.now()
	r.store.jobs[job.ID] = current
	return nil
}

func (r *JobRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.jobs[id]; !ok {
		return repositories.ErrJobNotFound
	}
	delete(r.store.jobs, id)
	return nil
}

func (r *JobRepository) Search(_ context.Context, filter models.JobFilter) ([]models.JobPosting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	jobs := make([]models.JobPosting, 0, len(r.store.jobs))
	for _, job := range r.store.jobs {
		if filter.Matches(&job) {
			jobs = append(jobs, job)
		}
	}
	sortJobsNewestFirst(jobs)
	return jobs, nil
}

func (r *JobRepository) FindByCreator(_ context.Context, creatorID string) ([]models.JobPosting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var jobs []models.JobPosting
	for _, job := range r.store.jobs {
		if job.CreatorID == creatorID {
			jobs = append(jobs, job)
		}
	}
	sortJobsNewestFirst(jobs)
	return jobs, nil
}
