package apperrors

// ErrorCode - машинный код ошибки в ответе API и в событии error по websocket
type ErrorCode string

const (
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	// CodeStoreError - хранилище недоступно, изменения не применены
	CodeStoreError ErrorCode = "STORE_ERROR"

	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeLimitExceeded    ErrorCode = "LIMIT_EXCEEDED"
	// CodeInvalidStatus - отклик уже принят или отклонён
	CodeInvalidStatus ErrorCode = "INVALID_STATUS"
	// CodeStaleReference - вакансия, отклик или переписка больше не существуют
	CodeStaleReference ErrorCode = "STALE_REFERENCE"
	CodeChannelClosed  ErrorCode = "CHANNEL_CLOSED"

	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
)
