// Package conv drives the multi-step conversation that creates a scheduled
// post: first the content (text or photo), then the daily time. Sessions are
// transient and strictly per user.
package conv

import (
	"context"
	"fmt"
	"log/slog"

	"postbot/internal/store"
)

const (
	promptContent    = "Send me the message or photo you want to schedule daily."
	promptTime       = "Send me the daily posting time in 24h format (HH:MM), e.g., 09:30"
	promptBadContent = "Please send either a text message or a photo with optional caption to schedule."
	promptBadTime    = "Invalid time format. Please send time as HH:MM in 24h format, e.g. 14:45"
	replyCanceled    = "Operation canceled."
)

// RecordSink is the write side of the post store the machine needs.
type RecordSink interface {
	Create(ctx context.Context, p store.Post) (string, error)
}

// Scheduler registers the daily trigger for a committed record.
type Scheduler interface {
	Schedule(id string, at store.Clock) error
}

// Machine is the conversation state machine for all users.
type Machine struct {
	sessions  *sessionTable
	records   RecordSink
	scheduler Scheduler
	channelID int64
}

// NewMachine creates a Machine committing posts to the given store and
// scheduler, destined for channelID.
func NewMachine(records RecordSink, scheduler Scheduler, channelID int64) *Machine {
	return &Machine{
		sessions:  newSessionTable(),
		records:   records,
		scheduler: scheduler,
		channelID: channelID,
	}
}

// Active reports whether the user has a conversation in progress.
func (m *Machine) Active(userID int64) bool {
	return m.sessions.get(userID).state != StateIdle
}

// Begin starts the add-post conversation, discarding any stale session for
// the user, and returns the content prompt.
func (m *Machine) Begin(userID int64) string {
	m.sessions.reset(userID, StateAwaitingContent)
	return promptContent
}

// Cancel discards the user's session from any state and returns the
// confirmation text.
func (m *Machine) Cancel(userID int64) string {
	m.sessions.evict(userID)
	return replyCanceled
}

// HandleText advances the conversation with a text message. In
// AwaitingContent the text becomes the post body; in AwaitingTime it must be
// a strict HH:MM string, which commits the post. The returned reply goes
// back to the user; done reports a completed commit.
func (m *Machine) HandleText(ctx context.Context, userID int64, text string) (reply string, done bool, err error) {
	s := m.sessions.get(userID)
	switch s.state {
	case StateAwaitingContent:
		if text == "" {
			return promptBadContent, false, nil
		}
		s.draft = draft{body: text}
		s.state = StateAwaitingTime
		m.sessions.put(userID, s)
		return promptTime, false, nil

	case StateAwaitingTime:
		at, err := store.ParseClock(text)
		if err != nil {
			return promptBadTime, false, nil
		}
		reply, err = m.commit(ctx, userID, s.draft, at)
		if err != nil {
			return "", false, err
		}
		return reply, true, nil

	default:
		return "", false, nil
	}
}

// HandlePhoto advances the conversation with a photo. Only AwaitingContent
// accepts one.
func (m *Machine) HandlePhoto(userID int64, photoRef, caption string) string {
	s := m.sessions.get(userID)
	switch s.state {
	case StateAwaitingContent:
		s.draft = draft{isPhoto: true, photoRef: photoRef, caption: caption}
		s.state = StateAwaitingTime
		m.sessions.put(userID, s)
		return promptTime
	case StateAwaitingTime:
		return promptBadTime
	default:
		return ""
	}
}

// HandleOther re-prompts for whatever the current state is waiting on.
// Idle users get nothing.
func (m *Machine) HandleOther(userID int64) string {
	switch m.sessions.get(userID).state {
	case StateAwaitingContent:
		return promptBadContent
	case StateAwaitingTime:
		return promptBadTime
	default:
		return ""
	}
}

// commit persists the gathered post, registers its daily job, and evicts
// the session.
func (m *Machine) commit(ctx context.Context, userID int64, d draft, at store.Clock) (string, error) {
	post := store.Post{
		OwnerID:   userID,
		ChannelID: m.channelID,
		Content:   d.content(),
		At:        at,
	}

	id, err := m.records.Create(ctx, post)
	if err != nil {
		// Session stays in AwaitingTime so the user can retry.
		return "", fmt.Errorf("commit post: %w", err)
	}

	if err := m.scheduler.Schedule(id, at); err != nil {
		// The record is durable; startup recovery arms the trigger.
		slog.Warn("failed to schedule committed post", "id", id, "error", err)
	}

	m.sessions.evict(userID)
	return fmt.Sprintf("Scheduled your post daily at %s UTC.", at), nil
}

func (d draft) content() store.Content {
	if d.isPhoto {
		return store.Content{Kind: store.KindImage, MediaRef: d.photoRef, Caption: d.caption}
	}
	return store.Content{Kind: store.KindText, Body: d.body}
}
