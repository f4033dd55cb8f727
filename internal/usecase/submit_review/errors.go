package submit_review

import "errors"

var (
	// ErrAccessDenied возвращается, когда отзыв оставляет не заказчик
	ErrAccessDenied = errors.New("submit_review: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("submit_review: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("submit_review: internal error")
)
