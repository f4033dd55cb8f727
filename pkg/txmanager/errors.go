package txmanager

import "errors"

var (
	// ErrTransaction возвращается при ошибках начала/фиксации транзакции
	ErrTransaction = errors.New("txmanager: transaction error")

	// ErrRetriesExhausted возвращается, когда транзакция так и не прошла после всех повторов
	ErrRetriesExhausted = errors.New("txmanager: retries exhausted")
)
