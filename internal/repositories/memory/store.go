// Package memory - in-memory реализация репозиториев для разработки и тестов.
// Семантика совпадает с postgres-реализацией: те же sentinel-ошибки,
// уникальность (job, applicant), условные обновления, порядок сообщений.
package memory

import (
	"sort"
	"sync"
	"time"

	"jobboard_backend/internal/models"
)

// Clock - источник серверного времени
type Clock func() time.Time

// Store держит все коллекции под одним мьютексом
type Store struct {
	mu    sync.RWMutex
	clock Clock

	jobs     map[string]models.JobPosting
	apps     map[string]models.Application
	messages map[string][]models.Message // по ChannelKey.String()
	msgIndex map[string]string           // message id -> channel
	seq      int64
}

type Option func(*Store)

func WithClock(clock Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:    time.Now,
		jobs:     make(map[string]models.JobPosting),
		apps:     make(map[string]models.Application),
		messages: make(map[string][]models.Message),
		msgIndex: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

func cloneApplication(a models.Application) models.Application {
	if a.Profile.Skills != nil {
		a.Profile.Skills = append([]string(nil), a.Profile.Skills...)
	}
	return a
}

func sortJobsNewestFirst(jobs []models.JobPosting) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

func sortAppsNewestFirst(apps []models.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
}
