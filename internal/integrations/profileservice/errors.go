package profileservice

import "errors"

var (
	// ErrCompanionNotFound возвращается, когда профиль компаньона не найден
	ErrCompanionNotFound = errors.New("companion profile not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("profileservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("profileservice client: invalid response")

	// ErrServiceUnavailable возвращается, когда circuit breaker разомкнут
	ErrServiceUnavailable = errors.New("profileservice client: service unavailable")
)
