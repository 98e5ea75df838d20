package format

import (
	"html"
	"strconv"
	"strings"

	"github.com/m3rciful/orderbot/core/order"
)

// Escape escapes text for Telegram HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}

// OrderHTML renders a dispatch notification as Telegram HTML.
func OrderHTML(n order.Notification) string {
	username := n.Username
	if n.HasUsername {
		username = "@" + n.Username
	}

	var b strings.Builder
	b.WriteString("<b>🚨 Новый заказ</b>\n")
	line(&b, "Услуга", Escape(n.Service))
	line(&b, "Имя", Escape(n.DisplayName))
	line(&b, "Телефон", "<code>"+Escape(n.Phone)+"</code>")
	line(&b, "Username", Escape(username))
	line(&b, "Локация", `<a href="`+Escape(n.MapURL)+`">📍 Открыть карту</a>`)
	b.WriteString("<b>User ID:</b> <code>")
	b.WriteString(strconv.FormatInt(n.UserID, 10))
	b.WriteString("</code>")
	if n.OrderID != "" {
		b.WriteString("\n<b>Заказ:</b> <code>")
		b.WriteString(Escape(n.OrderID))
		b.WriteString("</code>")
	}
	return b.String()
}

func line(b *strings.Builder, label, value string) {
	b.WriteString("<b>")
	b.WriteString(label)
	b.WriteString(":</b> ")
	b.WriteString(value)
	b.WriteByte('\n')
}
