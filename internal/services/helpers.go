package services

import (
	"context"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/realtime"
	"jobboard_backend/internal/validator"
	"jobboard_backend/pkg/apperrors"
)

// validate переводит ошибки валидатора в ValidationError до любой записи
func validate(v *validator.Validator, obj interface{}) error {
	if v == nil {
		return nil
	}
	if err := v.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			return apperrors.ValidationError(vErr.Errors)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// publish - сигнал подписчикам после успешной записи. Ошибка брокера не отменяет запись.
func publish(ctx context.Context, broker realtime.Broker, topic string) {
	if broker == nil {
		return
	}
	if err := broker.Publish(ctx, topic); err != nil {
		logger.CtxWarn(ctx, "Failed to publish change", "topic", topic, "error", err)
	}
}
