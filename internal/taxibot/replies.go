package taxibot

import (
	"strings"

	"github.com/m3rciful/orderbot/core/order"
)

// Texts holds every user-facing string. Empty fields fall back to defaults.
type Texts struct {
	// Greeting may contain {name}, replaced with the user's escaped full name.
	Greeting       string `yaml:"greeting"`
	Prompt         string `yaml:"prompt"`
	ReturnedToMenu string `yaml:"returned_to_menu"`
	OrderAccepted  string `yaml:"order_accepted"`
	Unknown        string `yaml:"unknown"`

	LocationButton string `yaml:"location_button"`
	ContactButton  string `yaml:"contact_button"`
	BackButton     string `yaml:"back_button"`

	Contact  string `yaml:"contact"`
	Info     string `yaml:"info"`
	Order    string `yaml:"order"`
	Sobriety string `yaml:"sobriety"`
	Price    string `yaml:"price"`

	AdminOnly string `yaml:"admin_only"`
}

// DefaultTexts are the stock Russian replies.
var DefaultTexts = Texts{
	Greeting:       "Здравствуйте, {name}!\nВыберите услугу:",
	Prompt:         "Пожалуйста, отправьте геолокацию и номер телефона:",
	ReturnedToMenu: "Вы вернулись в главное меню. Выберите услугу:",
	OrderAccepted:  "✅ Спасибо! Ваш заказ принят. Оператор скоро с вами свяжется.",
	Unknown:        "Пожалуйста, выберите команду из меню:",

	LocationButton: "📍 Отправить геолокацию",
	ContactButton:  "📞 Отправить номер телефона",
	BackButton:     "⬅️ Назад",

	Contact:  "📞 Диспетчер: +82 10-4307-1105\nВы также можете отправить заявку через бота.",
	Info:     "🚖 Taxi Cheongju — круглосуточная служба заказа такси, доставки и трезвого водителя в городе Чхонджу.",
	Order:    "Чтобы заказать такси, нажмите кнопку «Такси 🚕» в меню ниже.",
	Sobriety: "Чтобы вызвать трезвого водителя, выберите «Трезвый водитель 😇».",
	Price:    "Цены зависят от расстояния и времени суток. Уточните у оператора после отправки геолокации.",

	AdminOnly: "Команда доступна только администратору.",
}

func (t Texts) withDefaults() Texts {
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	d := DefaultTexts
	fill(&t.Greeting, d.Greeting)
	fill(&t.Prompt, d.Prompt)
	fill(&t.ReturnedToMenu, d.ReturnedToMenu)
	fill(&t.OrderAccepted, d.OrderAccepted)
	fill(&t.Unknown, d.Unknown)
	fill(&t.LocationButton, d.LocationButton)
	fill(&t.ContactButton, d.ContactButton)
	fill(&t.BackButton, d.BackButton)
	fill(&t.Contact, d.Contact)
	fill(&t.Info, d.Info)
	fill(&t.Order, d.Order)
	fill(&t.Sobriety, d.Sobriety)
	fill(&t.Price, d.Price)
	fill(&t.AdminOnly, d.AdminOnly)
	return t
}

// KeyboardKind selects the reply keyboard sent with a reply.
type KeyboardKind int

const (
	// KeyboardNone leaves the current keyboard untouched.
	KeyboardNone KeyboardKind = iota
	// KeyboardMenu shows the service menu.
	KeyboardMenu
	// KeyboardRequest shows the location/contact request buttons.
	KeyboardRequest
	// KeyboardRemove hides the keyboard.
	KeyboardRemove
)

// Reply is what the user sees in response to an action.
type Reply struct {
	Text     string
	Keyboard KeyboardKind
}

// Silent reports whether nothing should be sent.
func (r Reply) Silent() bool { return r.Text == "" }

// ReplyFor maps an aggregator action to the user reply.
// NoOp stays silent: the user is still expected to send the other fragment.
func ReplyFor(a order.Action, t Texts) Reply {
	switch a.Kind {
	case order.ActionPromptForContactAndLocation:
		return Reply{Text: t.Prompt, Keyboard: KeyboardRequest}
	case order.ActionNoMatch:
		return Reply{Text: t.Unknown, Keyboard: KeyboardMenu}
	case order.ActionReturnedToMenu:
		return Reply{Text: t.ReturnedToMenu, Keyboard: KeyboardMenu}
	case order.ActionOrderReady:
		return Reply{Text: t.OrderAccepted, Keyboard: KeyboardRemove}
	default:
		return Reply{}
	}
}
