package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CompanionBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CompanionBooking/internal/api/middleware"
	getAvailableSlots "github.com/m04kA/SMC-CompanionBooking/internal/usecase/get_available_slots"
)

const (
	msgInvalidCompanionID = "некорректный ID компаньона"
	msgMissingDate        = "дата обязательна"
	msgInvalidDate        = "некорректная дата, ожидается YYYY-MM-DD не в прошлом"
	msgDateTooFar         = "дата слишком далеко в будущем"
	msgCompanionNotFound  = "компаньон не найден"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/companions/{companionId}/availability
// Query params: date (required, YYYY-MM-DD в часовом поясе компаньона)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	companionID, err := strconv.ParseInt(vars["companionId"], 10, 64)
	if err != nil || companionID <= 0 {
		h.logger.Warn("GET /companions/{id}/availability - Invalid companion ID: %q", vars["companionId"])
		handlers.RespondBadRequest(w, msgInvalidCompanionID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /companions/{id}/availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	// Пользователь опционален: endpoint публичный
	userID, _ := middleware.GetUserID(r.Context())

	result, err := h.useCase.Execute(r.Context(), ToUseCaseRequest(userID, companionID, dateStr))
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrCompanionNotFound):
			h.logger.Warn("GET /companions/{id}/availability - Companion not found: companion_id=%d", companionID)
			handlers.RespondNotFound(w, msgCompanionNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate),
			errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /companions/{id}/availability - Invalid date: companion_id=%d, date=%s",
				companionID, dateStr)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /companions/{id}/availability - Date too far: companion_id=%d, date=%s",
				companionID, dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		default:
			h.logger.Error("GET /companions/{id}/availability - Failed to get windows: companion_id=%d, date=%s, error=%v",
				companionID, dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /companions/{id}/availability - Windows retrieved successfully: companion_id=%d, date=%s, windows_count=%d",
		companionID, dateStr, len(result.Windows))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
