package review

import "errors"

var (
	// ErrAlreadyReviewed возвращается, когда отзыв на бронирование уже оставлен
	ErrAlreadyReviewed = errors.New("review.repository: booking already reviewed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("review.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("review.repository: failed to execute query")
)
