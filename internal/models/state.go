package models

// UserState хранит текущий шаг диалога и черновик записи пользователя.
// Живет только на время диалога, очищается на терминальных переходах.
type UserState struct {
	UserID      int64                  `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data"`
}

func (s *UserState) GetString(key string) string {
	if s == nil || s.TempData == nil {
		return ""
	}
	if v, ok := s.TempData[key].(string); ok {
		return v
	}
	return ""
}

func (s *UserState) GetInt64(key string) int64 {
	if s == nil || s.TempData == nil {
		return 0
	}
	switch v := s.TempData[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		// JSON из Redis декодирует числа как float64
		return int64(v)
	default:
		return 0
	}
}
