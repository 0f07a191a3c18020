package models

import "time"

type Appointment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Service   string    `json:"service"`
	Price     int64     `json:"price"`
	Date      string    `json:"date"` // дд.мм.гггг
	Time      string    `json:"time"` // чч:мм
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AppointmentDetail — запись вместе с контактами клиента (для админ-отчетов)
type AppointmentDetail struct {
	Appointment
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

func (a *AppointmentDetail) ClientName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
