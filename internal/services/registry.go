package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	JobService          JobService
	ApplicationService  ApplicationService
	ChatService         ChatService
	NotificationService NotificationService
}
