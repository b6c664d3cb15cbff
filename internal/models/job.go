package models

import "strings"

// JobPosting - вакансия. CreatorID задаётся при создании и больше не меняется.
type JobPosting struct {
	BaseModel
	CreatorID   string `gorm:"type:varchar(128);not null;index" json:"creator_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Location    string `gorm:"type:varchar(255);not null" json:"location"`
	Salary      int64  `gorm:"not null;check:salary >= 0" json:"salary"`
	Description string `gorm:"type:text;not null" json:"description"`
}

func (JobPosting) TableName() string {
	return "jobs"
}

func (j *JobPosting) IsOwnedBy(userID string) bool {
	return j != nil && userID != "" && j.CreatorID == userID
}

// JobFilter - поиск по названию и городу плюс вилка зарплаты; пустые поля не фильтруют
type JobFilter struct {
	Query     string
	MinSalary *int64
	MaxSalary *int64
}

// Matches повторяет условие, которое репозиторий gorm строит через ILIKE
func (f JobFilter) Matches(job *JobPosting) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(job.Title), q) && !strings.Contains(strings.ToLower(job.Location), q) {
			return false
		}
	}
	if f.MinSalary != nil && job.Salary < *f.MinSalary {
		return false
	}
	if f.MaxSalary != nil && job.Salary > *f.MaxSalary {
		return false
	}
	return true
}
