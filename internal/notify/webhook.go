package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"math"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Simplici0/shiftprint/internal/store"
)

// OrderStore is what the operator flow needs from persistence.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (store.Order, error)
	ApproveOrder(ctx context.Context, id string, finalCost *float64) error
	CompleteOrder(ctx context.Context, id string) error
	ChangeOrderPrice(ctx context.Context, id string, price float64) error
	SelectOrderMaterial(ctx context.Context, id, materialName string) error
	SetChatState(ctx context.Context, st store.ChatState) error
	GetChatState(ctx context.Context, chatID int64) (store.ChatState, error)
	ClearChatState(ctx context.Context, chatID int64) error
}

// Operator reacts to button presses and replies in the operator chat.
type Operator struct {
	store  OrderStore
	bot    Bot
	chatID int64
}

// NewOperator only acts on updates coming from chatID.
func NewOperator(s OrderStore, bot Bot, chatID int64) *Operator {
	return &Operator{store: s, bot: bot, chatID: chatID}
}

// HandleUpdate processes one webhook update. Updates the bot does not care
// about, including anything from a chat other than the operator chat, are
// ignored without error.
func (op *Operator) HandleUpdate(ctx context.Context, u tgbotapi.Update) error {
	switch {
	case u.CallbackQuery != nil:
		if q := u.CallbackQuery; q.Message != nil && q.Message.Chat != nil && q.Message.Chat.ID != op.chatID {
			log.Printf("ignoring callback from chat %d", q.Message.Chat.ID)
			return nil
		}
		return op.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.Text != "" && u.Message.Chat != nil:
		if u.Message.Chat.ID != op.chatID {
			return nil
		}
		return op.handleText(ctx, u.Message.Chat.ID, u.Message.Text)
	}
	return nil
}

func (op *Operator) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q.Message == nil || q.Message.Chat == nil {
		return fmt.Errorf("callback %s has no message", q.ID)
	}
	chatID := q.Message.Chat.ID

	switch {
	case strings.HasPrefix(q.Data, prefixApprove):
		orderID := strings.TrimPrefix(q.Data, prefixApprove)
		if err := op.store.ApproveOrder(ctx, orderID, nil); err != nil {
			return fmt.Errorf("approve order %s: %w", orderID, err)
		}
		o, err := op.store.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("load order %s: %w", orderID, err)
		}
		if err := op.answer(q.ID, "✅ Заказ подтверждён!"); err != nil {
			return err
		}
		edit := tgbotapi.NewEditMessageCaption(chatID, q.Message.MessageID,
			html.EscapeString(q.Message.Caption)+"\n\n✅ <b>Статус:</b> ПОДТВЕРЖДЁН")
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := op.bot.Request(edit); err != nil {
			return fmt.Errorf("edit caption of order %s: %w", orderID, err)
		}
		return op.say(chatID, fmt.Sprintf("✅ Заказ #%s подтверждён!\n\n👤 Клиент %s увидит уведомление на сайте.",
			orderID, customerOr(o.CustomerName, "Клиент")))

	case strings.HasPrefix(q.Data, prefixEditPrice):
		orderID := strings.TrimPrefix(q.Data, prefixEditPrice)
		if !store.ValidID(orderID) {
			return fmt.Errorf("edit price: %w", store.ErrNotFound)
		}
		if err := op.answer(q.ID, "Отправьте новую цену числом (например: 350)"); err != nil {
			return err
		}
		if err := op.store.SetChatState(ctx, store.ChatState{ChatID: chatID, OrderID: orderID, Action: store.ActionAwaitingPrice}); err != nil {
			return err
		}
		return op.say(chatID, fmt.Sprintf("💰 Введите новую цену для заказа #%s в Lei:", orderID))

	case strings.HasPrefix(q.Data, prefixComplete):
		orderID := strings.TrimPrefix(q.Data, prefixComplete)
		if err := op.store.CompleteOrder(ctx, orderID); err != nil {
			return fmt.Errorf("complete order %s: %w", orderID, err)
		}
		o, err := op.store.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("load order %s: %w", orderID, err)
		}
		if err := op.answer(q.ID, "✅ Заказ отмечен как завершённый!"); err != nil {
			return err
		}
		return op.say(chatID, fmt.Sprintf(
			"✅ Заказ #%s завершён!\n\n👤 Клиент: %s\n📞 Телефон: %s\n\n📍 Адрес выдачи: %s\n\n💡 Отправьте SMS клиенту о готовности заказа",
			orderID, customerOr(o.CustomerName, "Не указан"), customerOr(o.CustomerPhone, "Не указан"), PickupAddress))

	case strings.HasPrefix(q.Data, prefixSelectMat):
		orderID, material, _ := strings.Cut(strings.TrimPrefix(q.Data, prefixSelectMat), "_")
		if err := op.store.SelectOrderMaterial(ctx, orderID, material); err != nil {
			return fmt.Errorf("select material for order %s: %w", orderID, err)
		}
		if err := op.answer(q.ID, "✅ Материал выбран: "+material); err != nil {
			return err
		}
		return op.say(chatID, fmt.Sprintf("🎨 Для заказа #%s выбран материал: %s", orderID, material))
	}

	return op.answer(q.ID, "")
}

func (op *Operator) handleText(ctx context.Context, chatID int64, text string) error {
	st, err := op.store.GetChatState(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && st.Action != store.ActionAwaitingPrice) {
		return nil
	}
	if err != nil {
		return err
	}

	price, err := parsePrice(text)
	if err != nil {
		return op.say(chatID, "❌ Неверный формат. Введите число (например: 350)")
	}

	if err := op.store.ChangeOrderPrice(ctx, st.OrderID, price); err != nil {
		return fmt.Errorf("change price of order %s: %w", st.OrderID, err)
	}
	if err := op.store.ClearChatState(ctx, chatID); err != nil {
		return err
	}
	o, err := op.store.GetOrder(ctx, st.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", st.OrderID, err)
	}
	return op.say(chatID, fmt.Sprintf("✅ Цена для заказа #%s обновлена: %s MDL\n\n👤 Клиент %s увидит уведомление на сайте.",
		st.OrderID, fmtNum(price, 2), customerOr(o.CustomerName, "Клиент")))
}

// parsePrice accepts a decimal comma as typed on phone keyboards.
func parsePrice(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price must be a non-negative number")
	}
	return v, nil
}

func (op *Operator) answer(callbackID, text string) error {
	if _, err := op.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback %s: %w", callbackID, err)
	}
	return nil
}

func (op *Operator) say(chatID int64, text string) error {
	if _, err := op.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

func customerOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
