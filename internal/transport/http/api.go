package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"quiz-session-engine/internal/app"
)

// API exposes the engine over REST and a per-player websocket.
type API struct {
	engine *app.Engine
	log    *zap.Logger
	ws     *WSHandler
}

func NewAPI(engine *app.Engine, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		engine: engine,
		log:    log,
		ws:     NewWSHandler(engine, log),
	}
}

// NewRouter wires every route. metrics may be nil to leave /metrics unmounted.
func NewRouter(engine *app.Engine, log *zap.Logger, metrics prometheus.Gatherer) http.Handler {
	api := NewAPI(engine, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /v1/admin/quiz/{quizid}/sessions", api.HandleListSessions)
	mux.HandleFunc("POST /v1/admin/quiz/{quizid}/session/start", api.HandleStartSession)
	mux.HandleFunc("PUT /v1/admin/quiz/{quizid}/session/{sessionid}", api.HandleUpdateSession)
	mux.HandleFunc("GET /v1/admin/quiz/{quizid}/session/{sessionid}", api.HandleSessionStatus)
	mux.HandleFunc("GET /v1/admin/quiz/{quizid}/session/{sessionid}/results", api.HandleFinalResults)
	mux.HandleFunc("GET /v1/admin/quiz/{quizid}/session/{sessionid}/results/link", api.HandleExportLink)
	mux.HandleFunc("GET /v1/admin/quiz/{quizid}/session/{sessionid}/results/csv", api.HandleExportCSV)

	mux.HandleFunc("POST /v1/player/join", api.HandleJoin)
	mux.HandleFunc("GET /v1/player/{playerid}", api.HandlePlayerStatus)
	mux.HandleFunc("GET /v1/player/{playerid}/question/{questionposition}", api.HandleCurrentQuestion)
	mux.HandleFunc("PUT /v1/player/{playerid}/question/{questionposition}/answer", api.HandleSubmitAnswer)
	mux.HandleFunc("GET /v1/player/{playerid}/question/{questionposition}/results", api.HandleQuestionResults)
	mux.HandleFunc("GET /v1/player/{playerid}/results", api.HandlePlayerFinalResults)
	mux.HandleFunc("POST /v1/player/{playerid}/chat", api.HandleSendChat)
	mux.HandleFunc("GET /v1/player/{playerid}/chat", api.HandleChatHistory)
	mux.HandleFunc("GET /v1/player/{playerid}/ws", api.ws.ServeWS)

	return requestLogger(api.log, mux)
}
