package app

import (
	"context"
	"sort"
	"unicode/utf8"

	"quiz-session-engine/internal/domain"
)

const maxChatLength = 100

// SendChat appends a message to the player's session log, whatever the session phase.
func (e *Engine) SendChat(ctx context.Context, playerID int, text string) error {
	_, err := call(ctx, e.loop, func() (struct{}, error) {
		p, err := e.registry.player(playerID)
		if err != nil {
			return struct{}{}, err
		}
		if n := utf8.RuneCountInString(text); n < 1 || n > maxChatLength {
			return struct{}{}, domain.ErrInvalidMessageLength
		}
		p.session.chat = append(p.session.chat, domain.ChatMessage{
			Text:       text,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			SentAt:     e.clock.Now(),
		})
		e.metrics.ChatMessage()
		return struct{}{}, nil
	})
	return err
}

// ChatHistory returns the player's session log ordered by send time; ties keep send order.
func (e *Engine) ChatHistory(ctx context.Context, playerID int) ([]domain.ChatMessage, error) {
	return call(ctx, e.loop, func() ([]domain.ChatMessage, error) {
		p, err := e.registry.player(playerID)
		if err != nil {
			return nil, err
		}
		messages := make([]domain.ChatMessage, len(p.session.chat))
		copy(messages, p.session.chat)
		sort.SliceStable(messages, func(i, j int) bool {
			return messages[i].SentAt.Before(messages[j].SentAt)
		})
		return messages, nil
	})
}
