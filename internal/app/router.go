package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"postbot/internal/bus"
)

const (
	replyWelcome       = "Welcome to the Daily Post Scheduler Bot.\nSelect an action:"
	replyNotAuthorized = "You are not authorized to use this bot."
	replyNoPosts       = "No scheduled posts found."
	replyListHeader    = "Your scheduled posts:"
	replyEditStub      = "Edit feature coming soon!"
	replyUnknownAction = "Unknown action."
	replyCommitFailed  = "Failed to save your post. Please try again."
)

func mainMenu() [][]bus.Button {
	return [][]bus.Button{
		{{Label: "Add Scheduled Post", Data: "add"}},
		{{Label: "List Scheduled Posts", Data: "list"}},
	}
}

func postButtons(id string) [][]bus.Button {
	return [][]bus.Button{{
		{Label: "Edit", Data: "edit:" + id},
		{Label: "Delete", Data: "delete:" + id},
	}}
}

// handleEvent routes one inbound event. Authorization is checked before any
// store or scheduler mutation; rejections are replies, not errors.
func (a *App) handleEvent(ctx context.Context, ev bus.InboundEvent) {
	switch ev.Kind {
	case bus.EventCommand:
		a.handleCommand(ev)
	case bus.EventCallback:
		a.handleCallback(ctx, ev)
	case bus.EventText:
		a.handleText(ctx, ev)
	case bus.EventPhoto:
		a.handlePhoto(ev)
	case bus.EventOther:
		a.handleOther(ev)
	}
}

func (a *App) handleCommand(ev bus.InboundEvent) {
	if !a.authorized(ev.UserID) {
		a.reply(ev.ChatID, replyNotAuthorized, nil)
		return
	}
	switch ev.Command {
	case "start":
		a.reply(ev.ChatID, replyWelcome, mainMenu())
	case "cancel":
		a.reply(ev.ChatID, a.machine.Cancel(ev.UserID), mainMenu())
	}
}

func (a *App) handleCallback(ctx context.Context, ev bus.InboundEvent) {
	edit := func(text string, keyboard [][]bus.Button) {
		a.bus.PublishOutbound(bus.OutboundMessage{
			ChatID:        ev.ChatID,
			Text:          text,
			Keyboard:      keyboard,
			EditMessageID: ev.MessageID,
			AnswerID:      ev.CallbackID,
		})
	}

	if !a.authorized(ev.UserID) {
		edit(replyNotAuthorized, nil)
		return
	}

	switch {
	case ev.Data == "add":
		edit(a.machine.Begin(ev.UserID), nil)

	case ev.Data == "list":
		a.handleList(ctx, ev, edit)

	case strings.HasPrefix(ev.Data, "delete:"):
		id := strings.TrimPrefix(ev.Data, "delete:")
		removed, err := a.store.Delete(ctx, id, ev.UserID)
		if err != nil {
			slog.Error("failed to delete post", "id", id, "error", err)
		}
		// Cancel regardless: either the row is gone and the trigger must
		// go too, or nothing was removed and cancel is a no-op.
		a.sched.Cancel(id)
		if removed {
			edit(fmt.Sprintf("Deleted scheduled post %s.", id), mainMenu())
		} else {
			edit(fmt.Sprintf("Post %s is already gone.", id), mainMenu())
		}

	case strings.HasPrefix(ev.Data, "edit:"):
		edit(replyEditStub, mainMenu())

	default:
		edit(replyUnknownAction, mainMenu())
	}
}

func (a *App) handleList(ctx context.Context, ev bus.InboundEvent, edit func(string, [][]bus.Button)) {
	posts, err := a.store.ListByOwner(ctx, ev.UserID)
	if err != nil {
		slog.Error("failed to list posts", "owner", ev.UserID, "error", err)
		edit("Failed to load your posts.", mainMenu())
		return
	}
	if len(posts) == 0 {
		edit(replyNoPosts, mainMenu())
		return
	}

	edit(replyListHeader, mainMenu())
	for _, p := range posts {
		a.reply(ev.ChatID,
			fmt.Sprintf("ID: %s\nTime: %s\n%s", p.ID, p.At, p.Preview()),
			postButtons(p.ID))
	}
}

func (a *App) handleText(ctx context.Context, ev bus.InboundEvent) {
	if !a.authorized(ev.UserID) {
		a.reply(ev.ChatID, replyNotAuthorized, nil)
		return
	}
	reply, done, err := a.machine.HandleText(ctx, ev.UserID, ev.Text)
	if err != nil {
		slog.Error("failed to commit post", "user", ev.UserID, "error", err)
		a.reply(ev.ChatID, replyCommitFailed, nil)
		return
	}
	if reply == "" {
		return
	}
	if done {
		a.reply(ev.ChatID, reply, mainMenu())
		return
	}
	a.reply(ev.ChatID, reply, nil)
}

func (a *App) handlePhoto(ev bus.InboundEvent) {
	if !a.authorized(ev.UserID) {
		a.reply(ev.ChatID, replyNotAuthorized, nil)
		return
	}
	if reply := a.machine.HandlePhoto(ev.UserID, ev.PhotoRef, ev.Caption); reply != "" {
		a.reply(ev.ChatID, reply, nil)
	}
}

func (a *App) handleOther(ev bus.InboundEvent) {
	if !a.authorized(ev.UserID) {
		return
	}
	if reply := a.machine.HandleOther(ev.UserID); reply != "" {
		a.reply(ev.ChatID, reply, nil)
	}
}

func (a *App) reply(chatID int64, text string, keyboard [][]bus.Button) {
	a.bus.PublishOutbound(bus.OutboundMessage{
		ChatID:   chatID,
		Text:     text,
		Keyboard: keyboard,
	})
}
