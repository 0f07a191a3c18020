package conversation

// EventKind вид входящего сигнала диалога.
type EventKind int

const (
	// KindCallback нажатие inline-кнопки, Data несет callback data
	KindCallback EventKind = iota

	// KindText обычное текстовое сообщение
	KindText

	// KindContact клиент поделился контактом, Data несет номер телефона
	KindContact
)

// Event один шаг клиента в диалоге.
type Event struct {
	Kind EventKind
	Data string
}

// Button inline-кнопка.
type Button struct {
	Label string
	Data  string
}

// Reply инструкция на отправку одного сообщения. Машина ничего не знает про
// Bot API: транспортный слой сам превращает Reply в вызовы Telegram.
type Reply struct {
	Text string

	// Inline клавиатура под сообщением
	Inline [][]Button

	// Keyboard обычная reply-клавиатура
	Keyboard [][]string

	// RequestContact первая кнопка reply-клавиатуры запрашивает контакт
	RequestContact bool

	// OneTime reply-клавиатура прячется после нажатия
	OneTime bool

	// Edit редактировать сообщение с нажатой кнопкой вместо нового
	Edit bool
}

// Result итог обработки события: следующий шаг, черновик и ответы клиенту.
type Result struct {
	// Step следующий шаг диалога, пустой при завершении
	Step string

	// Scratch черновик диалога, сохраняется вместе с шагом
	Scratch map[string]interface{}

	// Replies сообщения клиенту в порядке отправки
	Replies []Reply

	// Alert всплывающий ответ на callback
	Alert string

	// ShowAlert показать Alert модальным окном, а не тостом
	ShowAlert bool

	// End диалог завершен, сохраненное состояние очищается
	End bool
}

func (r *Result) reply(rep Reply) *Result {
	r.Replies = append(r.Replies, rep)
	return r
}
