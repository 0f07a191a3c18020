package models

const (
	StatusScheduled = "scheduled"
	StatusCanceled  = "canceled"
)

const (
	// SyncTaskAppend добавить строку записи в таблицу
	SyncTaskAppend = "append"

	// SyncTaskUpdateStatus обновить статус существующей строки
	SyncTaskUpdateStatus = "update_status"

	// SyncTaskReplaceAll полная перезаливка листа записей
	SyncTaskReplaceAll = "replace_all"
)

const (
	// DateLayout формат даты записи, как в кнопках календаря
	DateLayout = "02.01.2006"

	// TimeLayout формат слота
	TimeLayout = "15:04"
)

const (
	// DefaultRedisTTL время жизни состояния диалога в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// BookingWindowDays сколько дат предлагается при выборе (сегодня + 6)
	BookingWindowDays = 7

	// MaxMessageLength лимит Telegram на длину одного сообщения
	MaxMessageLength = 4096

	// AllAppointmentsLimit сколько последних записей показывает админ-отчет
	AllAppointmentsLimit = 20

	// ClientsLeaderboardLimit размер клиентского рейтинга
	ClientsLeaderboardLimit = 30

	// MyAppointmentsLimit сколько записей видит сам клиент
	MyAppointmentsLimit = 10

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений, секунд
	RateLimitWindow = 60
)
