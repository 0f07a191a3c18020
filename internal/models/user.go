package models

import "time"

type User struct {
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	PhoneNumber      string    `json:"phone_number"`
	RegistrationDate time.Time `json:"registration_date"`
}

// FullName собирает отображаемое имя клиента
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ClientStat строка клиентского рейтинга для админ-отчетов
type ClientStat struct {
	User
	AppointmentCount int64 `json:"appointment_count"`
}
