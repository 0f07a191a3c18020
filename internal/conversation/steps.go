package conversation

// Шаги диалога. Значения хранятся в состоянии клиента, менять без миграции нельзя.
const (
	StepMainMenu      = "main_menu"
	StepExisting      = "existing_appointment"
	StepSelectService = "select_service"
	StepChooseDate    = "choose_date"
	StepChooseTime    = "choose_time"
	StepConfirm       = "confirmation"
	StepContact       = "contact_info"
)

// Ключи черновика диалога.
const (
	keyServiceID = "service_id"
	keyService   = "selected_service"
	keyPrice     = "service_price"
	keyDate      = "selected_date"
	keyTime      = "selected_time"
	keyEditingID = "editing_appointment_id"
)

// Кнопки главного меню. По ним транспортный слой маршрутизирует сообщения.
const (
	BtnNewAppointment = "📅 Yangi buyurtma berish"
	BtnMyAppointments = "🔍 Mening buyurtmalarim"
	BtnContact        = "📞 Aloqa"
	BtnAdminPanel     = "👤 Admin panel"
)

// Кнопки админ-панели.
const (
	BtnTodayAppointments = "📋 Bugungi buyurtmalar"
	BtnAllAppointments   = "🗓 Barcha buyurtmalar"
	BtnClients           = "👥 Mijozlar ro'yxati"
	BtnExport            = "📊 Excel eksport"
	BtnBackToMain        = "🔙 Asosiy menyu"
)

// Callback data inline-кнопок.
const (
	cbUnavailable        = "unavailable"
	cbConfirm            = "confirm"
	cbCancel             = "cancel"
	cbNewAppointment     = "new_appointment"
	cbCancelAppointment  = "cancel_appointment"
	cbBackToMain         = "back_to_main"
	cbBackToServices     = "back_to_services"
	cbBackToDates        = "back_to_dates"
	cbBackToAppointments = "back_to_appointments"

	cbServicePrefix = "service_"
	cbDatePrefix    = "date_"
	cbTimePrefix    = "time_"
	cbEditPrefix    = "edit_appointment_"
)
