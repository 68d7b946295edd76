// Package notify talks to the operator through a Telegram bot.
package notify

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Simplici0/shiftprint/internal/store"
)

// Bot is the part of *tgbotapi.BotAPI the package uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewBot connects to the Bot API with token.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return bot, nil
}

// Notifier posts order events to the operator chat.
type Notifier struct {
	bot    Bot
	chatID int64
	now    func() time.Time
}

func NewNotifier(bot Bot, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, now: time.Now}
}

// OrderUploaded sends the model file with the review caption and action
// buttons.
func (n *Notifier) OrderUploaded(o NewOrder) error {
	doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FileBytes{Name: o.Order.FileName, Bytes: o.File})
	doc.Caption = NewOrderCaption(o, n.now())
	doc.ParseMode = tgbotapi.ModeHTML
	doc.ReplyMarkup = NewOrderKeyboard(o.Order.ID, o.Order.OperatorChoice, o.MaterialChoices)

	if _, err := n.bot.Send(doc); err != nil {
		return fmt.Errorf("send order %s document: %w", o.Order.ID, err)
	}
	return nil
}

// OrderConfirmed tells the operator the customer placed the order.
func (n *Notifier) OrderConfirmed(o store.Order, discount int) error {
	msg := tgbotapi.NewMessage(n.chatID, ConfirmedCaption(o, discount, n.now()))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Заказ выполнен", prefixComplete+o.ID),
		),
	)

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send order %s confirmation: %w", o.ID, err)
	}
	return nil
}
