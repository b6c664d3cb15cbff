package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const channelKeySeparator = "_"

var ErrInvalidChannelKey = errors.New("invalid channel key")

// ChannelKey идентифицирует переписку по отклику: вакансия, работодатель, соискатель.
// Строковая форма "<jobId>_<creatorId>_<applicantId>".
type ChannelKey struct {
	JobID       string
	CreatorID   string
	ApplicantID string
}

// NewChannelKey - единственный способ получить ключ из отклика.
// Используются снимки из отклика, а не текущие данные вакансии.
func NewChannelKey(app *Application) ChannelKey {
	return ChannelKey{
		JobID:       app.JobID,
		CreatorID:   app.CreatorID,
		ApplicantID: app.ApplicantID,
	}
}

func ParseChannelKey(s string) (ChannelKey, error) {
	parts := strings.Split(s, channelKeySeparator)
	if len(parts) != 3 {
		return ChannelKey{}, fmt.Errorf("%w: %q", ErrInvalidChannelKey, s)
	}
	key := ChannelKey{JobID: parts[0], CreatorID: parts[1], ApplicantID: parts[2]}
	if key.JobID == "" || key.CreatorID == "" || key.ApplicantID == "" {
		return ChannelKey{}, fmt.Errorf("%w: %q", ErrInvalidChannelKey, s)
	}
	return key, nil
}

// ValidateJobID - id вакансии в ключе от клиента должен быть uuid, как в таблице jobs
func (k ChannelKey) ValidateJobID() error {
	if _, err := uuid.Parse(k.JobID); err != nil {
		return fmt.Errorf("%w: job id %q", ErrInvalidChannelKey, k.JobID)
	}
	return nil
}

func (k ChannelKey) String() string {
	return k.JobID + channelKeySeparator + k.CreatorID + channelKeySeparator + k.ApplicantID
}

func (k ChannelKey) IsZero() bool {
	return k == ChannelKey{}
}

// Matches сверяет ключ со снимком в отклике
func (k ChannelKey) Matches(app *Application) bool {
	return app != nil && k == NewChannelKey(app)
}

func (k ChannelKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ChannelKey) UnmarshalText(text []byte) error {
	parsed, err := ParseChannelKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Value / Scan - хранение в колонке varchar

func (k ChannelKey) Value() (driver.Value, error) {
	return k.String(), nil
}

func (k *ChannelKey) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return k.UnmarshalText([]byte(v))
	case []byte:
		return k.UnmarshalText(v)
	case nil:
		*k = ChannelKey{}
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidChannelKey, src)
	}
}
