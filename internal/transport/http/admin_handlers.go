package http

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"quiz-session-engine/internal/domain"
)

type startSessionRequest struct {
	AutoStartNum int `json:"autoStartNum"`
}

type startSessionResponse struct {
	SessionID int `json:"sessionId"`
}

type updateSessionRequest struct {
	Action string `json:"action"`
}

type exportLinkResponse struct {
	URL string `json:"url"`
}

func (a *API) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := a.engine.ListSessions(r.Context(), r.PathValue("quizid"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	id, err := a.engine.StartSession(r.Context(), r.PathValue("quizid"), req.AutoStartNum)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startSessionResponse{SessionID: id})
}

func (a *API) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathInt(r, "sessionid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := a.engine.UpdateSessionState(r.Context(), r.PathValue("quizid"), sessionID, action); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (a *API) HandleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathInt(r, "sessionid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	status, err := a.engine.SessionStatus(r.Context(), r.PathValue("quizid"), sessionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) HandleFinalResults(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathInt(r, "sessionid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	results, err := a.engine.FinalResults(r.Context(), r.PathValue("quizid"), sessionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) HandleExportLink(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathInt(r, "sessionid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	link, err := a.engine.ExportLink(r.Context(), r.PathValue("quizid"), sessionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exportLinkResponse{URL: link})
}

// HandleExportCSV serves the document the export link points at.
func (a *API) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathInt(r, "sessionid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	table, err := a.engine.ResultsTable(r.Context(), r.PathValue("quizid"), sessionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="session-%d-results.csv"`, sessionID))
	if err := writeResultsCSV(w, table); err != nil {
		a.log.Warn("write results csv", zap.Int("sessionId", sessionID), zap.Error(err))
	}
}

func writeResultsCSV(w io.Writer, table domain.ResultsTable) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(table.QuestionIDs)+2)
	header = append(header, "player")
	for _, id := range table.QuestionIDs {
		header = append(header, "question "+strconv.Itoa(id))
	}
	header = append(header, "total")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range table.Rows {
		record := make([]string, 0, len(row.Scores)+2)
		record = append(record, row.PlayerName)
		for _, score := range row.Scores {
			record = append(record, strconv.Itoa(score))
		}
		record = append(record, strconv.Itoa(row.Total))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
