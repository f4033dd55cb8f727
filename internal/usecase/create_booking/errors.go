package create_booking

import "errors"

var (
	// ErrCompanionNotFound возвращается, когда компаньон не найден или неактивен
	ErrCompanionNotFound = errors.New("create_booking: companion not found")

	// ErrProfileUnavailable возвращается, когда ProfileService недоступен
	ErrProfileUnavailable = errors.New("create_booking: profile service unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
