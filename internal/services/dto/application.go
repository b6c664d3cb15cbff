package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

const DateLayout = "2006-01-02"

// ApplyRequest - анкета соискателя
type ApplyRequest struct {
	FullName    string   `json:"full_name" validate:"required,not-blank,max=255"`
	FatherName  string   `json:"father_name" validate:"required,not-blank,max=255"`
	DateOfBirth string   `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	NativePlace string   `json:"native_place" validate:"required,not-blank,max=255"`
	NationalID  string   `json:"national_id" validate:"required,national_id"`
	Contact     string   `json:"contact" validate:"required,not-blank,max=64"`
	Age         int      `json:"age" validate:"required,min=14,max=100"`
	Gender      string   `json:"gender" validate:"required,is-gender"`
	Experience  *int     `json:"experience" validate:"required,min=0,max=80"` // 0 лет допустимо, отсутствие поля нет
	Skills      []string `json:"skills" validate:"required,min=1,dive,not-blank"`
}

// ApplicationResponse - отклик плюс доступность переписки
type ApplicationResponse struct {
	models.Application
	CanMessage bool   `json:"can_message"`
	Channel    string `json:"channel_key,omitempty"`
}

func NewApplicationResponse(app *models.Application) *ApplicationResponse {
	resp := &ApplicationResponse{Application: *app, CanMessage: app.CanMessage()}
	if resp.CanMessage {
		resp.Channel = app.ChannelKey().String()
	}
	return resp
}

func NewApplicationResponses(apps []models.Application) []*ApplicationResponse {
	out := make([]*ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, NewApplicationResponse(&apps[i]))
	}
	return out
}

type PendingCountResponse struct {
	Count int64 `json:"count"`
}

// ChannelInfo - ключ переписки по отклику
type ChannelInfo struct {
	ApplicationID string                   `json:"application_id"`
	ChannelKey    string                   `json:"channel_key"`
	Reachable     bool                     `json:"reachable"`
	Status        models.ApplicationStatus `json:"status"`
	Counterpart   string                   `json:"counterpart_id"`
	JobTitle      string                   `json:"job_title"`
	AppliedAt     time.Time                `json:"applied_at"`
}
