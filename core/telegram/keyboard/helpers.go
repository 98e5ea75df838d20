package keyboard

import tele "gopkg.in/telebot.v4"

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a resized reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Column places each label on its own row.
func Column(labels []string) *tele.ReplyMarkup {
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []string{l})
	}
	return ReplyButtons(rows...)
}

// RequestLabels names the buttons of the contact/location request keyboard.
type RequestLabels struct {
	Location string
	Contact  string
	Back     string
}

// RequestButtons builds a one-time keyboard asking the user to share location
// and phone number, with a plain text button to go back.
func RequestButtons(l RequestLabels) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	markup.Reply(
		markup.Row(markup.Location(l.Location)),
		markup.Row(markup.Contact(l.Contact)),
		markup.Row(markup.Text(l.Back)),
	)
	return markup
}
