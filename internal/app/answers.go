package app

import (
	"context"
	"math"

	"go.uber.org/zap"

	"quiz-session-engine/internal/domain"
)

// SubmitAnswer records a player's answer set for the open question and scores it.
// A correct answer takes the next rank and earns round(points / rank); an incorrect one
// scores 0.
func (e *Engine) SubmitAnswer(ctx context.Context, playerID, position int, answerIDs []int) error {
	_, err := call(ctx, e.loop, func() (struct{}, error) {
		p, err := e.registry.player(playerID)
		if err != nil {
			return struct{}{}, err
		}
		s := p.session
		if !s.validPosition(position) {
			return struct{}{}, domain.ErrInvalidQuestionPosition
		}
		if s.state != domain.StateQuestionOpen {
			return struct{}{}, domain.ErrNotOpenForAnswers
		}
		if s.atQuestion != position {
			return struct{}{}, domain.ErrWrongQuestion
		}
		q, rt := s.question(position)
		if err := validateAnswerIDs(q, answerIDs); err != nil {
			return struct{}{}, err
		}

		sub := submission{
			playerID:  p.ID,
			answerIDs: append([]int(nil), answerIDs...),
			correct:   matchesCorrect(rt.correctIDs, answerIDs),
			timeTaken: e.clock.Now().Sub(rt.openedAt),
		}
		// A player takes a rank slot with their first correct answer and keeps it for the
		// rest of the question, whatever they resubmit.
		prev, resubmitted := rt.submissionOf(p.ID)
		switch {
		case resubmitted && prev.ranked:
			sub.rank = prev.rank
			sub.ranked = true
		case sub.correct:
			rt.correctRank++
			sub.rank = rt.correctRank
			sub.ranked = true
		default:
			sub.rank = rt.correctRank
		}
		if sub.correct {
			sub.score = int(math.Round(float64(q.Points) / float64(sub.rank)))
		}
		rt.record(sub)

		e.metrics.AnswerSubmitted(sub.correct)
		e.log.Debug("answer submitted",
			zap.Int("sessionId", s.id),
			zap.Int("playerId", p.ID),
			zap.Int("question", position),
			zap.Bool("correct", sub.correct),
			zap.Int("rank", sub.rank),
			zap.Int("score", sub.score),
		)
		return struct{}{}, nil
	})
	return err
}

// CurrentQuestion discloses the live question without correctness flags.
func (e *Engine) CurrentQuestion(ctx context.Context, playerID, position int) (domain.QuestionInfo, error) {
	return call(ctx, e.loop, func() (domain.QuestionInfo, error) {
		p, err := e.registry.player(playerID)
		if err != nil {
			return domain.QuestionInfo{}, err
		}
		s := p.session
		if !s.validPosition(position) {
			return domain.QuestionInfo{}, domain.ErrInvalidQuestionPosition
		}
		switch s.state {
		case domain.StateLobby, domain.StateQuestionCountdown, domain.StateEnd:
			return domain.QuestionInfo{}, domain.ErrSessionNotReady
		}
		if s.atQuestion != position {
			return domain.QuestionInfo{}, domain.ErrWrongQuestion
		}

		q, _ := s.question(position)
		answers := make([]domain.AnswerOption, len(q.Answers))
		for i, a := range q.Answers {
			answers[i] = domain.AnswerOption{ID: a.ID, Text: a.Text, Colour: a.Colour}
		}
		return domain.QuestionInfo{
			ID:           q.ID,
			Text:         q.Text,
			Duration:     q.Duration,
			Points:       q.Points,
			ThumbnailURL: q.ThumbnailURL,
			Answers:      answers,
		}, nil
	})
}

func validateAnswerIDs(q domain.Question, answerIDs []int) error {
	known := make(map[int]struct{}, len(q.Answers))
	for _, a := range q.Answers {
		known[a.ID] = struct{}{}
	}
	for _, id := range answerIDs {
		if _, ok := known[id]; !ok {
			return domain.ErrUnknownAnswerID
		}
	}
	seen := make(map[int]struct{}, len(answerIDs))
	for _, id := range answerIDs {
		if _, dup := seen[id]; dup {
			return domain.ErrDuplicateAnswerID
		}
		seen[id] = struct{}{}
	}
	if len(answerIDs) == 0 {
		return domain.ErrEmptySubmission
	}
	return nil
}

// matchesCorrect assumes answerIDs has no duplicates.
func matchesCorrect(correct map[int]struct{}, answerIDs []int) bool {
	if len(answerIDs) != len(correct) {
		return false
	}
	for _, id := range answerIDs {
		if _, ok := correct[id]; !ok {
			return false
		}
	}
	return true
}
