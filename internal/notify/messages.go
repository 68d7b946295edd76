package notify

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/shiftprint/internal/pricing"
	"github.com/Simplici0/shiftprint/internal/store"
)

const (
	prefixApprove   = "approve_"
	prefixEditPrice = "editprice_"
	prefixComplete  = "complete_"
	prefixSelectMat = "selectmat_"

	// maxCallbackData is Telegram's limit for callback_data, in bytes.
	maxCallbackData = 64
	// maxMaterialButtons is how many materials fit on one keyboard row.
	maxMaterialButtons = 3

	dateLayout = "02.01.2006 15:04"
	separator  = "━━━━━━━━━━━━━━━━━━"

	// PickupAddress is sent to the operator when an order is completed.
	PickupAddress = "г. Кишинёв, ул. Примэрией 45"
)

// ClientFigures are the values the customer saw in the browser. They take
// precedence over the server estimate in the operator message.
type ClientFigures struct {
	Price  *float64
	Weight *float64
	Hours  *float64
}

// NewOrder carries everything the operator needs to review an upload.
type NewOrder struct {
	Order store.Order
	File  []byte
	// Cost is the unrounded server breakdown, nil when not computed.
	Cost            *pricing.Breakdown
	Client          ClientFigures
	MaterialChoices []string
}

func fmtNum(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}

func esc(s string) string {
	return html.EscapeString(s)
}

// NewOrderCaption renders the document caption for a freshly uploaded order.
func NewOrderCaption(n NewOrder, now time.Time) string {
	o := n.Order
	var b strings.Builder

	fmt.Fprintf(&b, "🔔 <b>Новый заказ #%s</b>\n\n", esc(o.ID))
	fmt.Fprintf(&b, "📄 <b>Файл:</b> %s\n", esc(o.FileName))
	material := o.MaterialName
	if material == "" || o.OperatorChoice {
		material = "Выбор оператора"
	}
	fmt.Fprintf(&b, "🎨 <b>Материал:</b> %s\n", esc(material))
	if o.MaterialColor != "" {
		fmt.Fprintf(&b, "🌈 <b>Цвет:</b> %s\n", esc(o.MaterialColor))
	}

	weight := o.Weight
	if n.Client.Weight != nil {
		weight = n.Client.Weight
	}
	if weight != nil && *weight > 0 {
		fmt.Fprintf(&b, "⚖️ <b>Вес:</b> %sг\n", fmtNum(*weight, 2))
	}

	hours := o.PrintTime
	if n.Client.Hours != nil {
		hours = n.Client.Hours
	}
	if hours != nil && *hours > 0 {
		fmt.Fprintf(&b, "⏱ <b>Время печати:</b> %sч (%sмин)\n", fmtNum(*hours, 1), fmtNum(*hours*60, 0))
	}

	if o.Infill != "" {
		fmt.Fprintf(&b, "🔳 <b>Заполнение:</b> %s%%\n", esc(o.Infill))
	}
	if o.LayerHeight != "" {
		fmt.Fprintf(&b, "🔬 <b>Высота слоя:</b> %smm\n", esc(o.LayerHeight))
	}
	if scale := scalePercent(o.Scale); scale != "" {
		fmt.Fprintf(&b, "📐 <b>Масштаб:</b> %s%%\n", scale)
	}
	if o.Purpose != "" {
		fmt.Fprintf(&b, "📋 <b>Назначение:</b> %s\n", esc(o.Purpose))
	}
	if o.Loads != "" {
		fmt.Fprintf(&b, "📊 <b>Нагрузки:</b> %s\n", esc(o.Loads))
	}

	if n.Cost != nil && n.Cost.MaterialCost > 0 {
		c := n.Cost.Admin()
		fmt.Fprintf(&b, "\n%s\n", separator)
		b.WriteString("💵 <b>СЕБЕСТОИМОСТЬ:</b>\n")
		fmt.Fprintf(&b, "🧵 Пластик: <code>%s %s</code>\n", fmtNum(c.MaterialCost, 0), c.Currency)
		fmt.Fprintf(&b, "⚡ Электричество: <code>%s %s</code>\n", fmtNum(c.EnergyCost, 0), c.Currency)
		fmt.Fprintf(&b, "🔧 Амортизация: <code>%s %s</code>\n", fmtNum(c.DepreciationCost, 0), c.Currency)
		fmt.Fprintf(&b, "📊 <b>Итого себест.:</b> <code>%s %s</code>\n", fmtNum(c.Subtotal, 0), c.Currency)
		b.WriteString(separator)
	}

	fmt.Fprintf(&b, "\n💰 <b>ЦЕНА НА САЙТЕ:</b> <code>%s</code>\n", displayPrice(n))

	if o.CustomerName != "" || o.CustomerPhone != "" {
		fmt.Fprintf(&b, "\n👤 <b>Клиент:</b> %s\n", esc(orUnknown(o.CustomerName)))
		fmt.Fprintf(&b, "📞 <b>Телефон:</b> <code>%s</code>\n", esc(orUnknown(o.CustomerPhone)))
	}

	fmt.Fprintf(&b, "\n📅 %s", now.Format(dateLayout))
	return b.String()
}

func displayPrice(n NewOrder) string {
	currency := pricing.DefaultCurrency
	if n.Cost != nil && n.Cost.Currency != "" {
		currency = n.Cost.Currency
	}
	switch {
	case n.Client.Price != nil:
		return fmt.Sprintf("%d %s", int64(*n.Client.Price), currency)
	case n.Cost != nil:
		return fmt.Sprintf("%s %s", fmtNum(n.Cost.Total, 0), currency)
	default:
		return "уточняется"
	}
}

func scalePercent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "1" {
		return ""
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.Equal(decimal.NewFromInt(1)) {
		return ""
	}
	return v.Mul(decimal.NewFromInt(100)).Round(0).String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Не указан"
	}
	return s
}

// NewOrderKeyboard lays out the operator actions. Operator-choice orders get
// a row of material buttons between the two action rows.
func NewOrderKeyboard(orderID string, operatorChoice bool, materials []string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", prefixApprove+orderID),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить цену", prefixEditPrice+orderID),
		),
	}

	if operatorChoice {
		var mats []tgbotapi.InlineKeyboardButton
		for _, name := range materials {
			if len(mats) == maxMaterialButtons {
				break
			}
			mats = append(mats, tgbotapi.NewInlineKeyboardButtonData(name, SelectMaterialData(orderID, name)))
		}
		if len(mats) > 0 {
			rows = append(rows, mats)
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📦 Завершить заказ", prefixComplete+orderID),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SelectMaterialData builds the callback payload for a material button,
// truncating the name on a rune boundary to fit Telegram's limit.
func SelectMaterialData(orderID, material string) string {
	data := prefixSelectMat + orderID + "_"
	room := maxCallbackData - len(data)
	if room <= 0 {
		return data[:maxCallbackData]
	}
	if len(material) > room {
		cut := room
		for cut > 0 && !utf8.RuneStart(material[cut]) {
			cut--
		}
		material = material[:cut]
	}
	return data + material
}

// ConfirmedCaption renders the message sent once the customer places the order.
func ConfirmedCaption(o store.Order, discount int, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎉 <b>ЗАКАЗ ОФОРМЛЕН #%s</b>\n\n", esc(shortID(o.ID)))
	fmt.Fprintf(&b, "📄 <b>Файл:</b> %s\n", esc(o.FileName))
	material := o.MaterialName
	if material == "" {
		material = "Выбор оператора"
	}
	fmt.Fprintf(&b, "🎨 <b>Материал:</b> %s\n", esc(material))

	base := o.FinalCost
	if base == nil {
		base = o.EstimatedCost
	}
	price := "N/A"
	if base != nil {
		price = fmtNum(*base, 2)
	}
	fmt.Fprintf(&b, "💰 <b>Цена:</b> %s %s\n", price, pricing.DefaultCurrency)

	fmt.Fprintf(&b, "\n%s\n", separator)
	b.WriteString("👤 <b>КЛИЕНТ:</b>\n")
	fmt.Fprintf(&b, "📝 Имя: <b>%s</b>\n", esc(o.CustomerName))
	fmt.Fprintf(&b, "📞 Телефон: <code>%s</code>\n", esc(o.CustomerPhone))
	if o.CustomerEmail != "" {
		fmt.Fprintf(&b, "📧 Email: %s\n", esc(o.CustomerEmail))
	}
	if o.AuthMethod == AuthGoogle {
		b.WriteString("\n🔐 Авторизация: Google\n")
		if discount > 0 {
			fmt.Fprintf(&b, "🎁 <b>Скидка клиента: %d%%</b>\n", discount)
			if base != nil {
				fmt.Fprintf(&b, "💳 Со скидкой: %s %s\n", fmtNum(pricing.ApplyDiscount(*base, discount), 2), pricing.DefaultCurrency)
			}
		}
	}

	fmt.Fprintf(&b, "\n📅 %s", now.Format(dateLayout))
	return b.String()
}

// AuthGoogle is the auth method that earns loyalty discounts.
const AuthGoogle = "google"

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
