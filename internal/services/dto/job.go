package dto

type CreateJobRequest struct {
	Title       string `json:"title" binding:"required" validate:"required,not-blank,max=255"`
	Location    string `json:"location" binding:"required" validate:"required,not-blank,max=255"`
	Salary      *int64 `json:"salary" binding:"required" validate:"required,min=0"`
	Description string `json:"description" binding:"required" validate:"required,not-blank"`
}

// UpdateJobRequest - частичное обновление, nil-поля не меняются
type UpdateJobRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,not-blank,max=255"`
	Location    *string `json:"location,omitempty" validate:"omitempty,not-blank,max=255"`
	Salary      *int64  `json:"salary,omitempty" validate:"omitempty,min=0"`
	Description *string `json:"description,omitempty" validate:"omitempty,not-blank"`
}

// JobFilter - параметры GET /jobs
type JobFilter struct {
	Query     string `form:"q" json:"q" validate:"max=255"`
	MinSalary *int64 `form:"min_salary" json:"min_salary" validate:"omitempty,min=0"`
	MaxSalary *int64 `form:"max_salary" json:"max_salary" validate:"omitempty,min=0"`
}
