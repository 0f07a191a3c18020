// Package conversation реализует пошаговый диалог записи как явную машину
// состояний. Машина чистая: принимает событие и текущее состояние, возвращает
// следующий шаг и инструкции на отправку, сама ничего не шлет и не хранит.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"barberbot/internal/database"
	"barberbot/internal/models"
	"barberbot/internal/schedule"

	"github.com/rs/zerolog"
)

// Booker операции с записями, которые нужны диалогу.
type Booker interface {
	Book(ctx context.Context, appointment *models.Appointment) error
	Cancel(ctx context.Context, id int64) error
	FindActive(ctx context.Context, userID int64, now time.Time) (*models.Appointment, error)
	AvailableSlots(ctx context.Context, date string) ([]schedule.Slot, error)
	Get(ctx context.Context, id int64) (*models.Appointment, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]*models.Appointment, error)
}

// Directory операции с карточкой клиента.
type Directory interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	SetPhone(ctx context.Context, userID int64, phone string) error
}

type Machine struct {
	appointments Booker
	users        Directory
	catalog      []models.Service
	contactText  string
	now          func() time.Time
	logger       *zerolog.Logger
}

func NewMachine(appointments Booker, users Directory, catalog []models.Service, contactText string, logger *zerolog.Logger) *Machine {
	return &Machine{
		appointments: appointments,
		users:        users,
		catalog:      catalog,
		contactText:  contactText,
		now:          time.Now,
		logger:       logger,
	}
}

// Greet приветствие по /start с главным меню.
func (m *Machine) Greet(firstName string, isAdmin bool) *Result {
	text := fmt.Sprintf(
		"Assalomu alaykum, %s! 💈\n\n"+
			"Sartaroshxonamizning telegram botiga xush kelibsiz!\n"+
			"Soch olish, soqol olish va boshqa xizmatlar uchun qulaylik bilan buyurtma berishingiz mumkin.",
		firstName,
	)
	r := &Result{End: true}
	return r.reply(Reply{Text: text, Keyboard: mainKeyboard(isAdmin)})
}

// StartBooking вход в сценарий записи. Если у клиента уже есть активная
// запись, сначала предлагается выбор: новая, редактирование или назад.
func (m *Machine) StartBooking(ctx context.Context, userID int64) (*Result, error) {
	existing, err := m.appointments.FindActive(ctx, userID, m.now())
	if err != nil {
		return nil, err
	}

	if existing != nil {
		r := &Result{Step: StepExisting, Scratch: map[string]interface{}{}}
		return r.reply(existingReply(existing, false)), nil
	}

	r := &Result{Step: StepSelectService, Scratch: map[string]interface{}{}}
	return r.reply(m.serviceListReply(false)), nil
}

// MyAppointments последние записи клиента одним сообщением.
func (m *Machine) MyAppointments(ctx context.Context, userID int64) (*Result, error) {
	appointments, err := m.appointments.ListForUser(ctx, userID, models.MyAppointmentsLimit)
	if err != nil {
		return nil, err
	}

	r := &Result{End: true}
	if len(appointments) == 0 {
		return r.reply(Reply{Text: "Sizda hali buyurtmalar yo'q. Yangi buyurtma berish uchun asosiy menyudan foydalaning."}), nil
	}

	var b strings.Builder
	b.WriteString("🗓 Sizning buyurtmalaringiz:\n\n")
	for _, a := range appointments {
		fmt.Fprintf(&b, "🆔 #%d\n🧔 %s\n📅 %s, %s\n💰 %s\n%s\n\n",
			a.ID, a.Service, a.Date, a.Time, FormatPrice(a.Price), statusLine(a.Status))
	}
	b.WriteString("Yangi buyurtma berish uchun asosiy menyudan foydalaning.")
	return r.reply(Reply{Text: b.String()}), nil
}

// ContactInfo справочная информация салона.
func (m *Machine) ContactInfo() *Result {
	r := &Result{End: true}
	return r.reply(Reply{Text: m.contactText})
}

// Prompt подсказка, когда текст не совпал ни с одной кнопкой меню.
func (m *Machine) Prompt() *Result {
	r := &Result{End: true}
	return r.reply(Reply{Text: "Iltimos, quyidagi menuni tanlang"})
}

// Advance обрабатывает событие с учетом сохраненного шага диалога.
func (m *Machine) Advance(ctx context.Context, userID int64, isAdmin bool, state *models.UserState, ev Event) (*Result, error) {
	step := ""
	scratch := map[string]interface{}{}
	if state != nil {
		step = state.CurrentStep
		if state.TempData != nil {
			scratch = state.TempData
		}
	}

	switch ev.Kind {
	case KindCallback:
		return m.handleCallback(ctx, userID, isAdmin, step, scratch, ev.Data)
	case KindText, KindContact:
		if step == StepContact {
			return m.handleContact(ctx, userID, isAdmin, scratch, ev)
		}
		// Текст вне сценария: шаг не сбрасывается, клиент мог просто
		// написать что-то между нажатиями кнопок.
		r := &Result{Step: step, Scratch: scratch, End: step == ""}
		return r.reply(Reply{Text: "Iltimos, quyidagi menuni tanlang"}), nil
	}

	return m.Prompt(), nil
}

func (m *Machine) handleCallback(ctx context.Context, userID int64, isAdmin bool, step string, scratch map[string]interface{}, data string) (*Result, error) {
	switch {
	case data == cbUnavailable:
		return &Result{Step: step, Scratch: scratch, Alert: "Bu vaqt band!", ShowAlert: true}, nil

	case data == cbBackToMain:
		r := &Result{End: true}
		return r.reply(mainMenuReply(isAdmin)), nil

	case data == cbNewAppointment || data == cbBackToServices:
		r := &Result{Step: StepSelectService, Scratch: map[string]interface{}{}}
		return r.reply(m.serviceListReply(true)), nil

	case strings.HasPrefix(data, cbServicePrefix):
		return m.handleServicePicked(scratch, strings.TrimPrefix(data, cbServicePrefix))

	case data == cbBackToDates:
		if scratchString(scratch, keyService) == "" {
			r := &Result{Step: StepSelectService, Scratch: map[string]interface{}{}}
			return r.reply(m.serviceListReply(true)), nil
		}
		r := &Result{Step: StepChooseDate, Scratch: scratch}
		return r.reply(m.dateListReply(scratch)), nil

	case strings.HasPrefix(data, cbDatePrefix):
		return m.handleDatePicked(ctx, scratch, strings.TrimPrefix(data, cbDatePrefix))

	case strings.HasPrefix(data, cbTimePrefix):
		return m.handleTimePicked(scratch, strings.TrimPrefix(data, cbTimePrefix))

	case data == cbConfirm:
		return m.handleConfirm(ctx, userID, isAdmin, scratch)

	case data == cbCancel:
		r := &Result{End: true}
		return r.reply(Reply{
			Text: "Buyurtma bekor qilindi. Yangi buyurtma berish uchun asosiy menyudan foydalaning.",
			Edit: true,
		}), nil

	case strings.HasPrefix(data, cbEditPrefix):
		return m.handleEditExisting(ctx, scratch, strings.TrimPrefix(data, cbEditPrefix))

	case data == cbCancelAppointment:
		return m.handleCancelExisting(ctx, isAdmin, scratch)

	case data == cbBackToAppointments:
		return m.handleBackToAppointments(ctx, userID, scratch)
	}

	m.logger.Warn().Int64("user_id", userID).Str("data", data).Str("step", step).Msg("Неизвестный callback")
	r := &Result{End: true}
	return r.reply(mainMenuReply(isAdmin)), nil
}

func (m *Machine) handleServicePicked(scratch map[string]interface{}, serviceID string) (*Result, error) {
	service, ok := m.findService(serviceID)
	if !ok {
		// Устаревшая кнопка после смены прайс-листа
		r := &Result{Step: StepSelectService, Scratch: map[string]interface{}{}, Alert: "Xizmat topilmadi"}
		return r.reply(m.serviceListReply(true)), nil
	}

	scratch[keyServiceID] = service.ID
	scratch[keyService] = service.Name
	scratch[keyPrice] = service.Price

	r := &Result{Step: StepChooseDate, Scratch: scratch}
	return r.reply(m.dateListReply(scratch)), nil
}

func (m *Machine) handleDatePicked(ctx context.Context, scratch map[string]interface{}, date string) (*Result, error) {
	if _, err := schedule.ParseDate(date); err != nil {
		r := &Result{Step: StepChooseDate, Scratch: scratch, Alert: "Noto'g'ri sana"}
		return r.reply(m.dateListReply(scratch)), nil
	}

	scratch[keyDate] = date
	grid, err := m.timeGridReply(ctx, date)
	if err != nil {
		return nil, err
	}

	r := &Result{Step: StepChooseTime, Scratch: scratch}
	return r.reply(grid), nil
}

func (m *Machine) handleTimePicked(scratch map[string]interface{}, t string) (*Result, error) {
	if !schedule.IsWorkingHour(t) {
		return &Result{Step: StepChooseTime, Scratch: scratch, Alert: "Bu vaqt band!", ShowAlert: true}, nil
	}

	scratch[keyTime] = t

	text := fmt.Sprintf(
		"📋 Buyurtma ma'lumotlari:\n\n"+
			"🧔 Xizmat: %s\n📅 Sana: %s\n🕒 Vaqt: %s\n💰 Narxi: %s\n\n"+
			"Tasdiqlaysizmi?",
		scratchString(scratch, keyService),
		scratchString(scratch, keyDate),
		t,
		FormatPrice(scratchInt64(scratch, keyPrice)),
	)
	keyboard := [][]Button{{
		{Label: "✅ Tasdiqlash", Data: cbConfirm},
		{Label: "❌ Bekor qilish", Data: cbCancel},
	}}

	r := &Result{Step: StepConfirm, Scratch: scratch}
	return r.reply(Reply{Text: text, Inline: keyboard, Edit: true}), nil
}

func (m *Machine) handleConfirm(ctx context.Context, userID int64, isAdmin bool, scratch map[string]interface{}) (*Result, error) {
	if scratchString(scratch, keyService) == "" ||
		scratchString(scratch, keyDate) == "" ||
		scratchString(scratch, keyTime) == "" {
		// Черновик истек или потерян, начинать нечего
		r := &Result{End: true}
		return r.reply(Reply{Text: "Xatolik yuz berdi. Iltimos, qaytadan urinib ko'ring.", Edit: true}), nil
	}

	user, err := m.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PhoneNumber == "" {
		r := &Result{Step: StepContact, Scratch: scratch}
		r.reply(Reply{Text: "Buyurtmani yakunlash uchun telefon raqamingizni yuboring.", Edit: true})
		return r.reply(contactPromptReply()), nil
	}

	return m.finalize(ctx, userID, isAdmin, scratch, true)
}

func (m *Machine) handleContact(ctx context.Context, userID int64, isAdmin bool, scratch map[string]interface{}, ev Event) (*Result, error) {
	phone := strings.TrimSpace(ev.Data)
	if ev.Kind == KindContact && phone != "" && !strings.HasPrefix(phone, "+") {
		// Telegram отдает контакт без плюса
		phone = "+" + phone
	}

	if ev.Kind == KindText && !ValidPhone(phone) {
		r := &Result{Step: StepContact, Scratch: scratch}
		return r.reply(Reply{
			Text:           "Noto'g'ri format. Iltimos, raqamingizni +998XXXXXXXXX formatida yuboring yoki tugmani bosing.",
			Keyboard:       [][]string{{"📱 Telefon raqamni yuborish"}},
			RequestContact: true,
			OneTime:        true,
		}), nil
	}

	if err := m.users.SetPhone(ctx, userID, phone); err != nil {
		return nil, err
	}

	return m.finalize(ctx, userID, isAdmin, scratch, false)
}

// finalize создает запись из черновика. Занятый слот не терминален: клиент
// возвращается к выбору времени со свежей сеткой.
func (m *Machine) finalize(ctx context.Context, userID int64, isAdmin bool, scratch map[string]interface{}, edit bool) (*Result, error) {
	appointment := &models.Appointment{
		UserID:  userID,
		Service: scratchString(scratch, keyService),
		Price:   scratchInt64(scratch, keyPrice),
		Date:    scratchString(scratch, keyDate),
		Time:    scratchString(scratch, keyTime),
	}

	err := m.appointments.Book(ctx, appointment)
	if errors.Is(err, database.ErrSlotTaken) {
		delete(scratch, keyTime)
		grid, gridErr := m.timeGridReply(ctx, appointment.Date)
		if gridErr != nil {
			return nil, gridErr
		}
		grid.Edit = edit
		r := &Result{Step: StepChooseTime, Scratch: scratch, Alert: "Bu vaqt band!", ShowAlert: true}
		return r.reply(grid), nil
	}
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf(
		"✅ Buyurtmangiz muvaffaqiyatli saqlandi!\n\n"+
			"🆔 Buyurtma raqami: #%d\n🧔 Xizmat: %s\n📅 Sana: %s\n🕒 Vaqt: %s\n💰 Narxi: %s\n\n"+
			"Bizni tanlaganingiz uchun rahmat! Belgilangan vaqtda kutib qolamiz.",
		appointment.ID, appointment.Service, appointment.Date, appointment.Time, FormatPrice(appointment.Price),
	)

	r := &Result{End: true}
	if edit {
		r.reply(Reply{Text: text, Edit: true})
		r.reply(mainMenuReply(isAdmin))
	} else {
		r.reply(Reply{Text: text, Keyboard: mainKeyboard(isAdmin)})
	}
	return r, nil
}

func (m *Machine) handleEditExisting(ctx context.Context, scratch map[string]interface{}, rawID string) (*Result, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		id = 0
	}

	appointment, err := m.appointments.Get(ctx, id)
	if errors.Is(err, database.ErrAppointmentNotFound) || id == 0 {
		r := &Result{End: true}
		return r.reply(Reply{Text: "Bu buyurtma topilmadi. Iltimos, qaytadan urinib ko'ring.", Edit: true}), nil
	}
	if err != nil {
		return nil, err
	}

	scratch[keyEditingID] = appointment.ID

	text := fmt.Sprintf(
		"Buyurtma ma'lumotlari:\n\n🆔 #%d\n%s\n\nQuyidagi amallardan birini tanlang:",
		appointment.ID, appointmentSummary(appointment),
	)
	keyboard := [][]Button{
		{{Label: "❌ Buyurtmani bekor qilish", Data: cbCancelAppointment}},
		{{Label: "🔙 Orqaga", Data: cbBackToAppointments}},
	}

	r := &Result{Step: StepExisting, Scratch: scratch}
	return r.reply(Reply{Text: text, Inline: keyboard, Edit: true}), nil
}

func (m *Machine) handleCancelExisting(ctx context.Context, isAdmin bool, scratch map[string]interface{}) (*Result, error) {
	id := scratchInt64(scratch, keyEditingID)
	if id == 0 {
		r := &Result{End: true}
		return r.reply(Reply{Text: "Xatolik yuz berdi. Iltimos, qaytadan urinib ko'ring.", Edit: true}), nil
	}

	err := m.appointments.Cancel(ctx, id)
	if errors.Is(err, database.ErrAppointmentNotFound) {
		r := &Result{End: true}
		return r.reply(Reply{Text: "Bu buyurtma topilmadi. Iltimos, qaytadan urinib ko'ring.", Edit: true}), nil
	}
	if err != nil {
		return nil, err
	}

	r := &Result{End: true}
	r.reply(Reply{Text: fmt.Sprintf("Buyurtma #%d bekor qilindi.", id), Edit: true})
	return r.reply(mainMenuReply(isAdmin)), nil
}

func (m *Machine) handleBackToAppointments(ctx context.Context, userID int64, scratch map[string]interface{}) (*Result, error) {
	existing, err := m.appointments.FindActive(ctx, userID, m.now())
	if err != nil {
		return nil, err
	}

	if existing == nil {
		r := &Result{Step: StepSelectService, Scratch: map[string]interface{}{}}
		return r.reply(m.serviceListReply(true)), nil
	}

	delete(scratch, keyEditingID)
	r := &Result{Step: StepExisting, Scratch: scratch}
	return r.reply(existingReply(existing, true)), nil
}

// ValidPhone минимальная проверка формата: международный номер с плюсом.
func ValidPhone(phone string) bool {
	return strings.HasPrefix(phone, "+") && len(phone) >= 12
}

func (m *Machine) findService(id string) (models.Service, bool) {
	for _, s := range m.catalog {
		if s.ID == id {
			return s, true
		}
	}
	return models.Service{}, false
}

func (m *Machine) serviceListReply(edit bool) Reply {
	var keyboard [][]Button
	var row []Button
	for i, s := range m.catalog {
		if i%2 == 0 && i > 0 {
			keyboard = append(keyboard, row)
			row = nil
		}
		row = append(row, Button{
			Label: fmt.Sprintf("%s - %s", s.Name, FormatPrice(s.Price)),
			Data:  cbServicePrefix + s.ID,
		})
	}
	if len(row) > 0 {
		keyboard = append(keyboard, row)
	}
	keyboard = append(keyboard, []Button{{Label: "🔙 Orqaga", Data: cbBackToMain}})

	return Reply{Text: "Xizmat turini tanlang:", Inline: keyboard, Edit: edit}
}

func (m *Machine) dateListReply(scratch map[string]interface{}) Reply {
	var keyboard [][]Button
	for _, date := range schedule.UpcomingDates(m.now()) {
		keyboard = append(keyboard, []Button{{
			Label: schedule.DateLabel(date),
			Data:  cbDatePrefix + date,
		}})
	}
	keyboard = append(keyboard, []Button{{Label: "🔙 Orqaga", Data: cbBackToServices}})

	text := fmt.Sprintf(
		"Siz tanladingiz: %s - %s\n\nEndi sana tanlang:",
		scratchString(scratch, keyService),
		FormatPrice(scratchInt64(scratch, keyPrice)),
	)
	return Reply{Text: text, Inline: keyboard, Edit: true}
}

func (m *Machine) timeGridReply(ctx context.Context, date string) (Reply, error) {
	slots, err := m.appointments.AvailableSlots(ctx, date)
	if err != nil {
		return Reply{}, err
	}

	var keyboard [][]Button
	var row []Button
	for i, slot := range slots {
		if i%3 == 0 && i > 0 {
			keyboard = append(keyboard, row)
			row = nil
		}
		if slot.Booked {
			row = append(row, Button{Label: "❌ " + slot.Time, Data: cbUnavailable})
		} else {
			row = append(row, Button{Label: "✅ " + slot.Time, Data: cbTimePrefix + slot.Time})
		}
	}
	if len(row) > 0 {
		keyboard = append(keyboard, row)
	}
	keyboard = append(keyboard, []Button{{Label: "🔙 Orqaga", Data: cbBackToDates}})

	text := fmt.Sprintf("Tanlangan sana: %s\n\nEndi vaqtni tanlang:", date)
	return Reply{Text: text, Inline: keyboard, Edit: true}, nil
}

func existingReply(a *models.Appointment, edit bool) Reply {
	text := fmt.Sprintf(
		"Sizda allaqachon buyurtma mavjud:\n\n%s\n\nNima qilishni istaysiz?",
		appointmentSummary(a),
	)
	keyboard := [][]Button{
		{{Label: "📝 Yangi buyurtma berish", Data: cbNewAppointment}},
		{{Label: "✏️ Mavjud buyurtmani tahrirlash", Data: fmt.Sprintf("%s%d", cbEditPrefix, a.ID)}},
		{{Label: "🔙 Orqaga", Data: cbBackToMain}},
	}
	return Reply{Text: text, Inline: keyboard, Edit: edit}
}

func contactPromptReply() Reply {
	return Reply{
		Text:           "Pastdagi tugmani bosing yoki raqamingizni o'zingiz yuboring.\nFormat: +998XXXXXXXXX",
		Keyboard:       [][]string{{"📱 Telefon raqamni yuborish"}},
		RequestContact: true,
		OneTime:        true,
	}
}

func mainKeyboard(isAdmin bool) [][]string {
	if isAdmin {
		return [][]string{
			{BtnNewAppointment},
			{BtnMyAppointments},
			{BtnAdminPanel},
		}
	}
	return [][]string{
		{BtnNewAppointment},
		{BtnMyAppointments},
		{BtnContact},
	}
}

func mainMenuReply(isAdmin bool) Reply {
	return Reply{Text: "Asosiy menyu:", Keyboard: mainKeyboard(isAdmin)}
}

func scratchString(scratch map[string]interface{}, key string) string {
	if v, ok := scratch[key].(string); ok {
		return v
	}
	return ""
}

func scratchInt64(scratch map[string]interface{}, key string) int64 {
	switch v := scratch[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		// черновик из Redis приходит через JSON
		return int64(v)
	default:
		return 0
	}
}
