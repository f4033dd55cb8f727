package outbox

import "errors"

// ErrInternal возвращается при внутренних ошибках релея
var ErrInternal = errors.New("outbox: internal error")
