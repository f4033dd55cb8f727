package transition_booking

import "errors"

var (
	// ErrAccessDenied возвращается, когда роль пользователя не позволяет выполнить действие
	ErrAccessDenied = errors.New("transition_booking: access denied")

	// ErrUnknownAction возвращается для неизвестного или служебного действия
	ErrUnknownAction = errors.New("transition_booking: unknown action")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("transition_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("transition_booking: internal error")
)
