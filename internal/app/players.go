package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"quiz-session-engine/internal/domain"
)

// Join adds a guest to a session in LOBBY. An empty name is replaced by a generated one.
func (e *Engine) Join(ctx context.Context, sessionID int, name string) (int, error) {
	return call(ctx, e.loop, func() (int, error) {
		s, err := e.registry.sessionByID(sessionID)
		if err != nil {
			return 0, err
		}
		if s.state != domain.StateLobby {
			return 0, domain.ErrNotJoinable
		}
		if name == "" {
			name = e.freshName(s)
		} else if e.registry.nameTaken(s, name) {
			return 0, domain.ErrNameTaken
		}

		p := e.registry.addPlayer(s, name)
		e.metrics.PlayerJoined()
		e.log.Info("player joined",
			zap.Int("sessionId", s.id),
			zap.Int("playerId", p.ID),
			zap.String("name", p.Name),
		)

		if s.autoStartNum > 0 && len(s.players) == s.autoStartNum {
			if err := e.apply(s, domain.ActionNextQuestion, triggerAuto); err != nil {
				e.log.Warn("auto start failed", zap.Int("sessionId", s.id), zap.Error(err))
			}
		}
		return p.ID, nil
	})
}

// PlayerStatus reports the phase of the player's session.
func (e *Engine) PlayerStatus(ctx context.Context, playerID int) (domain.PlayerStatus, error) {
	return call(ctx, e.loop, func() (domain.PlayerStatus, error) {
		p, err := e.registry.player(playerID)
		if err != nil {
			return domain.PlayerStatus{}, err
		}
		return p.session.playerStatus(), nil
	})
}

func (e *Engine) freshName(s *Session) string {
	for {
		name := generateName(e.rnd)
		if !e.registry.nameTaken(s, name) {
			return name
		}
	}
}

// generateName returns five distinct lowercase letters followed by three digits.
func generateName(rnd *rand.Rand) string {
	var b strings.Builder
	for _, i := range rnd.Perm(26)[:5] {
		b.WriteByte(byte('a' + i))
	}
	fmt.Fprintf(&b, "%03d", rnd.Intn(1000))
	return b.String()
}
