package get_available_slots

import "time"

// Request модель запроса свободных окон компаньона
type Request struct {
	UserID      int64  // ID пользователя (для логирования, не влияет на результат)
	CompanionID int64  // ID компаньона
	Date        string // Локальная дата компаньона "YYYY-MM-DD"
}

// Response свободные окна на день
type Response struct {
	Date        string
	CompanionID int64
	Timezone    string
	Windows     []Window
}

// Window интервал, который можно забронировать целиком или частично
type Window struct {
	StartTime     time.Time
	EndTime       time.Time
	DurationHours float64
}
