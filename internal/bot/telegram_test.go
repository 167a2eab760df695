package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"postbot/internal/bus"
)

func commandMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: 70},
		Text:      text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
	}
}

func TestToEventCallback(t *testing.T) {
	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			From: &tgbotapi.User{ID: 7},
			Data: "delete:abc",
			Message: &tgbotapi.Message{
				MessageID: 42,
				Chat:      &tgbotapi.Chat{ID: 70},
			},
		},
	}

	ev, ok := toEvent(update)
	if !ok {
		t.Fatal("expected an event")
	}
	want := bus.InboundEvent{
		Kind:       bus.EventCallback,
		UserID:     7,
		ChatID:     70,
		CallbackID: "cb-1",
		Data:       "delete:abc",
		MessageID:  42,
	}
	if ev != want {
		t.Errorf("ev = %+v, want %+v", ev, want)
	}
}

func TestToEventCommand(t *testing.T) {
	ev, ok := toEvent(tgbotapi.Update{Message: commandMessage("/start")})
	if !ok {
		t.Fatal("expected an event")
	}
	if ev.Kind != bus.EventCommand || ev.Command != "start" {
		t.Errorf("ev = %+v", ev)
	}
}

func TestToEventPhotoTakesLargestSize(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From:    &tgbotapi.User{ID: 7},
			Chat:    &tgbotapi.Chat{ID: 70},
			Caption: "sunset",
			Photo: []tgbotapi.PhotoSize{
				{FileID: "small", Width: 90},
				{FileID: "medium", Width: 320},
				{FileID: "large", Width: 1280},
			},
		},
	}

	ev, ok := toEvent(update)
	if !ok {
		t.Fatal("expected an event")
	}
	if ev.Kind != bus.EventPhoto || ev.PhotoRef != "large" || ev.Caption != "sunset" {
		t.Errorf("ev = %+v", ev)
	}
}

func TestToEventText(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 7},
			Chat: &tgbotapi.Chat{ID: 70},
			Text: "08:15",
		},
	}

	ev, ok := toEvent(update)
	if !ok {
		t.Fatal("expected an event")
	}
	if ev.Kind != bus.EventText || ev.Text != "08:15" {
		t.Errorf("ev = %+v", ev)
	}
}

func TestToEventDropsEmptyUpdate(t *testing.T) {
	if _, ok := toEvent(tgbotapi.Update{}); ok {
		t.Error("empty update produced an event")
	}
}

func TestToEventOtherKind(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From:    &tgbotapi.User{ID: 7},
			Chat:    &tgbotapi.Chat{ID: 70},
			Sticker: &tgbotapi.Sticker{FileID: "sticker"},
		},
	}

	ev, ok := toEvent(update)
	if !ok {
		t.Fatal("expected an event")
	}
	if ev.Kind != bus.EventOther {
		t.Errorf("kind = %q, want other", ev.Kind)
	}
}

func TestToMarkup(t *testing.T) {
	kb, ok := toMarkup([][]bus.Button{
		{{Label: "Edit", Data: "edit:1"}, {Label: "Delete", Data: "delete:1"}},
		{{Label: "Add Scheduled Post", Data: "add"}},
	})
	if !ok {
		t.Fatal("expected a markup")
	}
	if len(kb.InlineKeyboard) != 2 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected shape: %+v", kb.InlineKeyboard)
	}
	b := kb.InlineKeyboard[0][1]
	if b.Text != "Delete" || b.CallbackData == nil || *b.CallbackData != "delete:1" {
		t.Errorf("unexpected button: %+v", b)
	}

	if _, ok := toMarkup(nil); ok {
		t.Error("nil rows produced a markup")
	}
}
