package models

import (
	"regexp"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// 12 цифр, первая не 0 и не 1
var nationalIDPattern = regexp.MustCompile(`^[2-9][0-9]{11}$`)

func IsValidNationalID(s string) bool {
	return nationalIDPattern.MatchString(s)
}

// ApplicantProfile - анкета соискателя, хранится прямо в строке отклика
type ApplicantProfile struct {
	FullName    string         `gorm:"type:varchar(255);not null" json:"full_name"`
	FatherName  string         `gorm:"type:varchar(255);not null" json:"father_name"`
	DateOfBirth datatypes.Date `gorm:"not null" json:"date_of_birth"`
	NativePlace string         `gorm:"type:varchar(255);not null" json:"native_place"`
	NationalID  string         `gorm:"type:char(12);not null" json:"national_id"`
	Contact     string         `gorm:"type:varchar(64);not null" json:"contact"`
	Age         int            `json:"age"`
	Gender      string         `gorm:"type:varchar(16)" json:"gender"`
	Experience  int            `gorm:"not null;default:0" json:"experience"`
	Skills      pq.StringArray `gorm:"type:text[];not null" json:"skills"`
}

// Application - отклик соискателя на вакансию.
//
// JobTitle и CreatorID копируются из вакансии в момент отклика и дальше не
// перечитываются: переименование вакансии старые отклики не меняет.
type Application struct {
	BaseModel
	JobID       string            `gorm:"type:uuid;not null;index;uniqueIndex:idx_application_job_applicant,priority:1" json:"job_id"`
	ApplicantID string            `gorm:"type:varchar(128);not null;index;uniqueIndex:idx_application_job_applicant,priority:2" json:"applicant_id"`
	JobTitle    string            `gorm:"type:varchar(255);not null" json:"job_title"`
	CreatorID   string            `gorm:"type:varchar(128);not null;index" json:"creator_id"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Profile     ApplicantProfile  `gorm:"embedded" json:"profile"`
	AppliedAt   time.Time         `gorm:"not null" json:"applied_at"`
}

func (Application) TableName() string {
	return "applications"
}

// CanMessage - чат доступен только после принятия отклика
func (a *Application) CanMessage() bool {
	return a != nil && a.Status == ApplicationStatusAccepted
}

func (a *Application) IsParticipant(userID string) bool {
	return userID != "" && (a.ApplicantID == userID || a.CreatorID == userID)
}

// Counterpart возвращает второго участника переписки
func (a *Application) Counterpart(userID string) string {
	if userID == a.ApplicantID {
		return a.CreatorID
	}
	return a.ApplicantID
}

func (a *Application) ChannelKey() ChannelKey {
	return NewChannelKey(a)
}
