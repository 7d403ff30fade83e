package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/app/server/handlers"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/services"
	"github.com/ArmandoKoffi/ChatApp-backend/pkg/middleware"
)

type Server struct {
	mux       *http.ServeMux
	httpSrv   *http.Server
	addr      string
	wsHandler *handlers.WSHandler
	tokenSvc  *services.TokenService
	log       *slog.Logger
}

func NewServer(
	addr string,
	log *slog.Logger,
	tokenSvc *services.TokenService,
	router *services.RouterService,
) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		addr:      addr,
		wsHandler: handlers.NewWSHandler(router),
		tokenSvc:  tokenSvc,
		log:       log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	auth := middleware.AuthMiddleware(s.tokenSvc)
	logging := middleware.RequestLogger(s.log)
	tracing := middleware.TracerMiddleware("chatapp-backend")

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// One persistent connection per client. The auth middleware extracts
	// the JWT subject and the gateway trusts it for the session lifetime.
	s.mux.Handle("/ws", tracing(logging(auth(http.HandlerFunc(s.wsHandler.Handler)))))
}

func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:        s.addr,
		Handler:     s.mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would kill long-lived ws connections.
	}
	s.log.Info("server starting", "addr", s.addr)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
