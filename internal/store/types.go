package store

import (
	"fmt"
	"time"
)

// ContentKind discriminates what a post sends when it fires.
type ContentKind string

const (
	KindText  ContentKind = "text"  // plain text message
	KindImage ContentKind = "image" // photo by file reference, optional caption
)

// Content is the payload of a post. Body is set for KindText; MediaRef
// (and optionally Caption) for KindImage.
type Content struct {
	Kind     ContentKind `json:"kind"`
	Body     string      `json:"body,omitempty"`
	MediaRef string      `json:"mediaRef,omitempty"`
	Caption  string      `json:"caption,omitempty"`
}

// Validate checks the kind-specific required fields.
func (c Content) Validate() error {
	switch c.Kind {
	case KindText:
		if c.Body == "" {
			return fmt.Errorf("text content requires a non-empty body")
		}
	case KindImage:
		if c.MediaRef == "" {
			return fmt.Errorf("image content requires a media reference")
		}
	default:
		return fmt.Errorf("unknown content kind %q", c.Kind)
	}
	return nil
}

// Clock is a daily trigger time, interpreted in UTC.
type Clock struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParseClock parses a strict "HH:MM" string: exactly two digits per
// component, hour 00-23, minute 00-59. Anything else is rejected.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
		}
	}
	c := Clock{
		Hour:   int(s[0]-'0')*10 + int(s[1]-'0'),
		Minute: int(s[3]-'0')*10 + int(s[4]-'0'),
	}
	if err := c.Validate(); err != nil {
		return Clock{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return c, nil
}

// Validate range-checks both components.
func (c Clock) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("hour %d out of range", c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("minute %d out of range", c.Minute)
	}
	return nil
}

// String renders the clock back to "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Post is one scheduled daily post.
type Post struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	ChannelID int64     `json:"channelId"`
	Content   Content   `json:"content"`
	At        Clock     `json:"at"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks everything that must hold before a post is persisted.
func (p Post) Validate() error {
	if err := p.Content.Validate(); err != nil {
		return err
	}
	if err := p.At.Validate(); err != nil {
		return err
	}
	return nil
}

// Preview is the short description used in post listings.
func (p Post) Preview() string {
	if p.Content.Kind == KindImage {
		return "[Image]"
	}
	return p.Content.Body
}
