package memory

import (
	"context"

	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
)

type ApplicationRepository struct {
	store *Store
}

func NewApplicationRepository(store *Store) repositories.ApplicationRepository {
	return &ApplicationRepository{store: store}
}

func (r *ApplicationRepository) Create(_ context.Context, app *models.Application) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.apps {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return repositories.ErrDuplicateApplication
		}
	}

	app.EnsureID()
	now := r.store.now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.AppliedAt.IsZero() {
		app.AppliedAt = now
	}
	r.store.apps[app.ID] = cloneApplication(*app)
	return nil
}

func (r *ApplicationRepository) FindByID(_ context.Context, id string) (*models.Application, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	app, ok := r.store.apps[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	app = cloneApplication(app)
	return &app, nil
}

func (r *ApplicationRepository) FindByJobAndApplicant(_ context.Context, jobID, applicantID string) (*models.Application, error) {
	return r.findOne(func(a *models.Application) bool {
		return a.JobID == jobID && a.ApplicantID == applicantID
	})
}

func (r *ApplicationRepository) FindByChannel(_ context.Context, key models.ChannelKey) (*models.Application, error) {
	return r.findOne(key.Matches)
}

func (r *ApplicationRepository) FindByJob(_ context.Context, jobID string) ([]models.Application, error) {
	return r.filter(func(a *models.Application) bool { return a.JobID == jobID }), nil
}

func (r *ApplicationRepository) FindByApplicant(_ context.Context, applicantID string) ([]models.Application, error) {
	return r.filter(func(a *models.Application) bool { return a.ApplicantID == applicantID }), nil
}

func (r *ApplicationRepository) FindByJobs(_ context.Context, jobIDs []string) ([]models.Application, error) {
	set := toSet(jobIDs)
	return r.filter(func(a *models.Application) bool { return set[a.JobID] }), nil
}

func (r *ApplicationRepository) FindAcceptedForUser(_ context.Context, userID string) ([]models.Application, error) {
	return r.filter(func(a *models.Application) bool {
		return a.Status == models.ApplicationStatusAccepted && a.IsParticipant(userID)
	}), nil
}

func (r *ApplicationRepository) CountByJobsAndStatus(_ context.Context, jobIDs []string, status models.ApplicationStatus) (int64, error) {
	set := toSet(jobIDs)
	return int64(len(r.filter(func(a *models.Application) bool {
		return set[a.JobID] && a.Status == status
	}))), nil
}

func (r *ApplicationRepository) UpdateStatus(_ context.Context, id string, from, to models.ApplicationStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	app, ok := r.store.apps[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	if app.Status != from {
		return repositories.ErrStatusConflict
	}
	app.Status = to
	app.UpdatedAt = r.store.now()
	r.store.apps[id] = app
	return nil
}

func (r *ApplicationRepository) findOne(match func(*models.Application) bool) (*models.Application, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, app := range r.store.apps {
		if match(&app) {
			found := cloneApplication(app)
			return &found, nil
		}
	}
	return nil, repositories.ErrApplicationNotFound
}

func (r *ApplicationRepository) filter(match func(*models.Application) bool) []models.Application {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var apps []models.Application
	for _, app := range r.store.apps {
		if match(&app) {
			apps = append(apps, cloneApplication(app))
		}
	}
	sortAppsNewestFirst(apps)
	return apps
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
