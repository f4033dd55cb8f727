package sweeper

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках воркера
	ErrInternal = errors.New("sweeper: internal error")

	// errNothingToDo бронирование уже не требует перехода (изменено параллельно)
	errNothingToDo = errors.New("sweeper: booking is not due")
)
