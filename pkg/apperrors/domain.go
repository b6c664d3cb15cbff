package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные ошибки домена: вакансии, отклики, переписка.
Репозитории возвращают свои sentinel-ошибки, сервисы переводят их сюда.
*/

// =========================================================================
// Фабричные ФУНКЦИИ (оборачивают ошибку репозитория)
// =========================================================================

// ErrStore - хранилище недоступно или вернуло ошибку (503). Повтор не делаем.
func ErrStore(err error) *AppError {
	return Wrap(err, CodeStoreError, "store", "Storage operation failed", http.StatusServiceUnavailable)
}

// ErrStaleReference - вакансия/отклик/переписка уже не существуют (404)
func ErrStaleReference(err error, domain, message string) *AppError {
	return Wrap(err, CodeStaleReference, domain, message, http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error, domain, message string) *AppError {
	return Wrap(err, CodeAlreadyExists, domain, message, http.StatusConflict)
}

// ErrInvalidStatus - переход из терминального статуса (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ
// =========================================================================

// --- Roles ---

var ErrCreatorRoleRequired = New(
	CodeForbidden,
	"auth",
	"Only creators can perform this action",
	http.StatusForbidden,
)

var ErrEmployeeRoleRequired = New(
	CodeForbidden,
	"auth",
	"Only employees can perform this action",
	http.StatusForbidden,
)

// --- Jobs ---

var ErrNotJobOwner = New(
	CodeForbidden,
	"job",
	"You are not the owner of this job",
	http.StatusForbidden,
)

// --- Applications ---

var ErrCannotApplyToOwnJob = New(
	CodeForbidden,
	"application",
	"You cannot apply to your own job",
	http.StatusForbidden,
)

var ErrApplicationAccessDenied = New(
	CodeForbidden,
	"application",
	"Access to application denied",
	http.StatusForbidden,
)

// --- Chat ---

var ErrChannelAccessDenied = New(
	CodeForbidden,
	"chat",
	"You are not a participant of this conversation",
	http.StatusForbidden,
)

// ErrChannelClosed - отклик не принят, писать нельзя
var ErrChannelClosed = New(
	CodeChannelClosed,
	"chat",
	"Messaging is available only for accepted applications",
	http.StatusForbidden,
)

var ErrEmptyMessage = New(
	CodeValidationFailed,
	"validation",
	"Message text must not be empty",
	http.StatusBadRequest,
)

var ErrTooManyMessages = New(
	CodeLimitExceeded,
	"chat",
	"Too many messages, slow down",
	http.StatusTooManyRequests,
)
