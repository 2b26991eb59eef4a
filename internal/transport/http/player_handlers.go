package http

import (
	"net/http"

	"quiz-session-engine/internal/domain"
)

type joinRequest struct {
	SessionID int    `json:"sessionId"`
	Name      string `json:"name"`
}

type joinResponse struct {
	PlayerID int `json:"playerId"`
}

type submitAnswerRequest struct {
	AnswerIDs []int `json:"answerIds"`
}

type sendChatRequest struct {
	MessageBody struct {
		Message string `json:"message"`
	} `json:"messageBody"`
}

type chatHistoryResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
}

func (a *API) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	id, err := a.engine.Join(r.Context(), req.SessionID, req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{PlayerID: id})
}

func (a *API) HandlePlayerStatus(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathInt(r, "playerid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	status, err := a.engine.PlayerStatus(r.Context(), playerID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) HandleCurrentQuestion(w http.ResponseWriter, r *http.Request) {
	playerID, position, ok := playerAndPosition(w, r)
	if !ok {
		return
	}
	info, err := a.engine.CurrentQuestion(r.Context(), playerID, position)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (a *API) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	playerID, position, ok := playerAndPosition(w, r)
	if !ok {
		return
	}
	var req submitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := a.engine.SubmitAnswer(r.Context(), playerID, position, req.AnswerIDs); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (a *API) HandleQuestionResults(w http.ResponseWriter, r *http.Request) {
	playerID, position, ok := playerAndPosition(w, r)
	if !ok {
		return
	}
	result, err := a.engine.QuestionResults(r.Context(), playerID, position)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) HandlePlayerFinalResults(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathInt(r, "playerid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	results, err := a.engine.PlayerFinalResults(r.Context(), playerID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) HandleSendChat(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathInt(r, "playerid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req sendChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := a.engine.SendChat(r.Context(), playerID, req.MessageBody.Message); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (a *API) HandleChatHistory(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathInt(r, "playerid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	messages, err := a.engine.ChatHistory(r.Context(), playerID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatHistoryResponse{Messages: messages})
}

func playerAndPosition(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	playerID, err := pathInt(r, "playerid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return 0, 0, false
	}
	position, err := pathInt(r, "questionposition")
	if err != nil {
		writeBadRequest(w, err.Error())
		return 0, 0, false
	}
	return playerID, position, true
}
