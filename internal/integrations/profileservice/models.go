package profileservice

// Companion профиль компаньона, нужный для бронирования
type Companion struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	HourlyRate int64  `json:"hourly_rate"`
	Currency   string `json:"currency"`
	Timezone   string `json:"timezone"`
	IsActive   bool   `json:"is_active"`
}

// ErrorResponse модель ошибки от ProfileService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
