// Package bot is the Telegram transport: it turns bot API updates into bus
// events and bus messages into bot API calls. Nothing above this package
// touches a Telegram type.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"postbot/internal/bus"
)

// Channel is the Telegram side of the bus.
type Channel struct {
	bot    *tgbotapi.BotAPI
	bus    *bus.MessageBus
	stopCh chan struct{}
}

// NewChannel creates a Channel authenticated with token.
func NewChannel(token string, msgBus *bus.MessageBus) (*Channel, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Channel{
		bot:    api,
		bus:    msgBus,
		stopCh: make(chan struct{}),
	}, nil
}

// BotName returns the authenticated bot's username.
func (c *Channel) BotName() string { return c.bot.Self.UserName }

// Start begins the long-poll update loop in a goroutine. Each update is
// normalized into a bus event; updates carrying nothing useful are dropped.
func (c *Channel) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := toEvent(update)
				if !ok {
					continue
				}
				c.bus.PublishInbound(ev)
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case <-c.stopCh:
				c.bot.StopReceivingUpdates()
				return
			}
		}
	}()
	return nil
}

// Stop halts the update loop.
func (c *Channel) Stop() error {
	close(c.stopCh)
	return nil
}

// Send delivers one outbound message.
func (c *Channel) Send(msg bus.OutboundMessage) error {
	if msg.AnswerID != "" {
		if _, err := c.bot.Request(tgbotapi.NewCallback(msg.AnswerID, "")); err != nil {
			slog.Debug("failed to answer callback query", "error", err)
		}
	}

	switch {
	case msg.PhotoRef != "":
		photo := tgbotapi.NewPhoto(msg.ChatID, tgbotapi.FileID(msg.PhotoRef))
		photo.Caption = msg.Caption
		if kb, ok := toMarkup(msg.Keyboard); ok {
			photo.ReplyMarkup = kb
		}
		_, err := c.bot.Send(photo)
		return err

	case msg.EditMessageID != 0:
		if kb, ok := toMarkup(msg.Keyboard); ok {
			_, err := c.bot.Send(tgbotapi.NewEditMessageTextAndMarkup(msg.ChatID, msg.EditMessageID, msg.Text, kb))
			return err
		}
		_, err := c.bot.Send(tgbotapi.NewEditMessageText(msg.ChatID, msg.EditMessageID, msg.Text))
		return err

	case msg.Text != "":
		m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
		if kb, ok := toMarkup(msg.Keyboard); ok {
			m.ReplyMarkup = kb
		}
		_, err := c.bot.Send(m)
		return err
	}
	return nil
}

// toEvent normalizes a Telegram update into a bus event.
func toEvent(update tgbotapi.Update) (bus.InboundEvent, bool) {
	if cb := update.CallbackQuery; cb != nil && cb.Message != nil {
		return bus.InboundEvent{
			Kind:       bus.EventCallback,
			UserID:     cb.From.ID,
			ChatID:     cb.Message.Chat.ID,
			CallbackID: cb.ID,
			Data:       cb.Data,
			MessageID:  cb.Message.MessageID,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return bus.InboundEvent{}, false
	}

	ev := bus.InboundEvent{
		UserID: msg.From.ID,
		ChatID: msg.Chat.ID,
	}
	switch {
	case msg.IsCommand():
		ev.Kind = bus.EventCommand
		ev.Command = msg.Command()
		ev.Text = msg.Text
	case len(msg.Photo) > 0:
		// Sizes are ordered smallest first; take the largest.
		ev.Kind = bus.EventPhoto
		ev.PhotoRef = msg.Photo[len(msg.Photo)-1].FileID
		ev.Caption = msg.Caption
	case msg.Text != "":
		ev.Kind = bus.EventText
		ev.Text = msg.Text
	default:
		ev.Kind = bus.EventOther
	}
	return ev, true
}

func toMarkup(rows [][]bus.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	kb := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		kb = append(kb, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: kb}, true
}
