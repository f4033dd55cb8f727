package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/pkg/txmanager"
)

const (
	msgInternalError    = "внутренняя ошибка сервера"
	msgTransientFailure = "сервис временно перегружен, повторите запрос"

	// CodeTransientFailure код исчерпания повторов транзакции, вне бизнес-таксономии
	CodeTransientFailure = "TRANSIENT_FAILURE"
)

// validate общий валидатор тегов `validate` для моделей запросов
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse тело ответа с ошибкой.
// Для бизнес-ошибок Error содержит стабильный код, Meta - данные, по которым принято решение.
type ErrorResponse struct {
	Code    int            `json:"code"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// DecodeJSON декодирует тело запроса, неизвестные поля считаются ошибкой
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// Validate проверяет модель запроса по тегам `validate`
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError отправляет ошибку с произвольным статусом
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// StatusForKind HTTP статус для вида бизнес-ошибки
func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindBookingNotFound:
		return http.StatusNotFound
	case domain.KindBookingFrequencyLimit:
		return http.StatusTooManyRequests
	case domain.KindReviewWindowExpired:
		return http.StatusUnprocessableEntity
	case domain.KindBookingConflict,
		domain.KindBookingInvalidState,
		domain.KindDoubleBooking,
		domain.KindBookingCancellationDenied,
		domain.KindCompanionNotAvailable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError отвечает на бизнес-ошибку и исчерпание повторов транзакции.
// Возвращает false, если err не относится ни к одному из этих случаев.
func RespondDomainError(w http.ResponseWriter, err error) bool {
	if de, ok := domain.AsError(err); ok {
		status := StatusForKind(de.Kind)
		RespondJSON(w, status, ErrorResponse{
			Code:    status,
			Error:   de.Code(),
			Message: de.Message,
			Meta:    de.Meta,
		})
		return true
	}

	if errors.Is(err, txmanager.ErrRetriesExhausted) {
		RespondJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Code:    http.StatusServiceUnavailable,
			Error:   CodeTransientFailure,
			Message: msgTransientFailure,
		})
		return true
	}

	return false
}
