package models

type UserRole string
type ApplicationStatus string

const (
	UserRoleCreator  UserRole = "creator"
	UserRoleEmployee UserRole = "employee"

	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleCreator || r == UserRoleEmployee
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	default:
		return false
	}
}

// IsFinal - accepted и rejected терминальны
func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// CanTransition разрешает только pending -> accepted и pending -> rejected.
func CanTransition(from, to ApplicationStatus) bool {
	if from != ApplicationStatusPending {
		return false
	}
	return to == ApplicationStatusAccepted || to == ApplicationStatusRejected
}
