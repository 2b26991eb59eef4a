package app

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"quiz-session-engine/internal/domain"
)

// QuestionResults aggregates the current question while the session shows answers.
func (e *Engine) QuestionResults(ctx context.Context, playerID, position int) (domain.QuestionResult, error) {
	return call(ctx, e.loop, func() (domain.QuestionResult, error) {
		p, err := e.registry.player(playerID)
		if err != nil {
			return domain.QuestionResult{}, err
		}
		s := p.session
		if !s.validPosition(position) {
			return domain.QuestionResult{}, domain.ErrInvalidQuestionPosition
		}
		if s.state != domain.StateAnswerShow {
			return domain.QuestionResult{}, domain.ErrNotInAnswerShow
		}
		if s.atQuestion != position {
			return domain.QuestionResult{}, domain.ErrWrongQuestion
		}
		return s.questionResult(position), nil
	})
}

// FinalResults returns the leaderboard and per-question results of a session in FINAL_RESULTS.
func (e *Engine) FinalResults(ctx context.Context, quizID string, sessionID int) (domain.FinalResults, error) {
	return call(ctx, e.loop, func() (domain.FinalResults, error) {
		s, err := e.registry.session(quizID, sessionID)
		if err != nil {
			return domain.FinalResults{}, err
		}
		if s.state != domain.StateFinalResults {
			return domain.FinalResults{}, domain.ErrNotInFinalResults
		}
		return s.finalResults(), nil
	})
}

// PlayerFinalResults is FinalResults addressed by one of the session's players.
func (e *Engine) PlayerFinalResults(ctx context.Context, playerID int) (domain.FinalResults, error) {
	return call(ctx, e.loop, func() (domain.FinalResults, error) {
		p, err := e.registry.player(playerID)
		if err != nil {
			return domain.FinalResults{}, err
		}
		if p.session.state != domain.StateFinalResults {
			return domain.FinalResults{}, domain.ErrNotInFinalResults
		}
		return p.session.finalResults(), nil
	})
}

// ExportLink returns the stable URL of the session's score export.
func (e *Engine) ExportLink(ctx context.Context, quizID string, sessionID int) (string, error) {
	return call(ctx, e.loop, func() (string, error) {
		s, err := e.registry.session(quizID, sessionID)
		if err != nil {
			return "", err
		}
		if s.state != domain.StateFinalResults {
			return "", domain.ErrNotInFinalResults
		}
		return fmt.Sprintf("%s/v1/admin/quiz/%s/session/%d/results/csv",
			e.exportBaseURL, url.PathEscape(quizID), sessionID), nil
	})
}

// ResultsTable returns the per-player, per-question scores rendered by the export.
// Rows follow leaderboard order.
func (e *Engine) ResultsTable(ctx context.Context, quizID string, sessionID int) (domain.ResultsTable, error) {
	return call(ctx, e.loop, func() (domain.ResultsTable, error) {
		s, err := e.registry.session(quizID, sessionID)
		if err != nil {
			return domain.ResultsTable{}, err
		}
		if s.state != domain.StateFinalResults {
			return domain.ResultsTable{}, domain.ErrNotInFinalResults
		}

		table := domain.ResultsTable{QuestionIDs: make([]int, len(s.snapshot.Questions))}
		for i, q := range s.snapshot.Questions {
			table.QuestionIDs[i] = q.ID
		}
		table.Rows = s.standings()
		return table, nil
	})
}

func (s *Session) questionResult(position int) domain.QuestionResult {
	q, rt := s.question(position)
	result := domain.QuestionResult{
		QuestionID:         q.ID,
		CorrectPlayerNames: []string{},
	}
	if len(rt.submissions) == 0 {
		return result
	}

	names := make(map[int]string, len(s.players))
	for _, p := range s.players {
		names[p.ID] = p.Name
	}
	var totalSeconds float64
	correct := 0
	for _, sub := range rt.submissions {
		totalSeconds += sub.timeTaken.Seconds()
		if sub.correct {
			correct++
			result.CorrectPlayerNames = append(result.CorrectPlayerNames, names[sub.playerID])
		}
	}
	n := len(rt.submissions)
	result.AverageAnswerTime = int(totalSeconds / float64(n))
	result.PercentCorrect = 100 * correct / n
	return result
}

// standings returns one row per player, highest total first. The sort is stable so
// players with equal totals stay in join order.
func (s *Session) standings() []domain.ResultsRow {
	rows := make([]domain.ResultsRow, len(s.players))
	for i, p := range s.players {
		row := domain.ResultsRow{PlayerName: p.Name, Scores: make([]int, len(s.questions))}
		for j, rt := range s.questions {
			row.Scores[j] = rt.scoreOf(p.ID)
			row.Total += row.Scores[j]
		}
		rows[i] = row
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	return rows
}

func (s *Session) finalResults() domain.FinalResults {
	rows := s.standings()
	leaderboard := make([]domain.LeaderboardEntry, len(rows))
	for i, row := range rows {
		leaderboard[i] = domain.LeaderboardEntry{Name: row.PlayerName, Score: row.Total}
	}

	results := make([]domain.QuestionResult, len(s.questions))
	for i := range s.questions {
		results[i] = s.questionResult(i + 1)
	}
	return domain.FinalResults{Leaderboard: leaderboard, QuestionResults: results}
}
