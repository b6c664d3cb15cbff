package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	JobHandler         *JobHandler
	ApplicationHandler *ApplicationHandler
	ChatHandler        *ChatHandler
	HealthHandler      *HealthHandler
}
