// Package domain contains the core business entities and value objects.
// These structs are framework-agnostic and represent the heart of the application.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyMessage is returned when a chat call carries no user text.
var ErrEmptyMessage = errors.New("message must not be empty")

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// Turn is a single chronological entry of a conversation.
type Turn struct {
	Role    Role   `json:"role" binding:"required"`
	Content string `json:"content"`
}

// Conversation is an ordered sequence of turns, oldest first.
type Conversation []Turn

// CountRole returns how many turns carry the given role.
func (c Conversation) CountRole(role Role) int {
	n := 0
	for _, t := range c {
		if t.Role == role {
			n++
		}
	}
	return n
}

// Validate checks the invariants every outbound conversation must hold:
// known roles only and at most one system entry.
func (c Conversation) Validate() error {
	for i, t := range c {
		if !t.Role.IsValid() {
			return fmt.Errorf("turn %d: unknown role %q", i, t.Role)
		}
	}
	if n := c.CountRole(RoleSystem); n > 1 {
		return fmt.Errorf("conversation carries %d system turns, at most one is allowed", n)
	}
	return nil
}

// Mode selects the persona used for a chat call.
type Mode string

const (
	// ModeGeneral is the general-purpose assistant.
	ModeGeneral Mode = "general"

	// ModeSpecialist is the network expert technical-support persona.
	ModeSpecialist Mode = "specialist"
)

// ParseMode converts an inbound flag into a Mode.
// The empty string maps to ModeGeneral; "expert" is accepted as an alias.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeGeneral):
		return ModeGeneral, nil
	case string(ModeSpecialist), "expert":
		return ModeSpecialist, nil
	default:
		return "", fmt.Errorf("unknown mode %q, must be one of: general, specialist", s)
	}
}

// ModeFromExpertFlag maps the legacy boolean expert flag onto a Mode.
func ModeFromExpertFlag(expert bool) Mode {
	if expert {
		return ModeSpecialist
	}
	return ModeGeneral
}

// ProviderRequest is built fresh for every upstream call.
type ProviderRequest struct {
	Model        string
	Messages     Conversation
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	Stream       bool
}

// Validate checks request bounds before it is handed to an adapter.
func (r ProviderRequest) Validate() error {
	if r.Model == "" {
		return errors.New("model is required")
	}
	if len(r.Messages) == 0 {
		return errors.New("at least one message is required")
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", r.MaxTokens)
	}
	if r.Temperature < 0 || r.Temperature > 1 {
		return fmt.Errorf("temperature must be within [0,1], got %v", r.Temperature)
	}
	if r.Stream {
		return errors.New("streaming responses are not supported")
	}
	return r.Messages.Validate()
}
