package router

import (
	"net/http"

	handler "resumebuilder/internal/resume"
	"resumebuilder/internal/resume/service"
	"resumebuilder/middleware"
	"resumebuilder/socket"
)

type Options struct {
	JWTSecret  string
	CORSOrigin string
}

func Setup(hub *socket.Hub, svc *service.ResumeService, opts Options) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(opts.JWTSecret)

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r, middleware.UserID(r.Context()))
	})
	mux.Handle("/ws", auth(wsHandler))

	// REST API
	h := handler.NewResumeHandler(svc)

	mux.Handle("/api/session/login", http.HandlerFunc(h.Login))
	mux.Handle("/api/session/logout", auth(http.HandlerFunc(h.Logout)))
	mux.Handle("/api/state", http.HandlerFunc(h.GetState))
	mux.Handle("/api/resumes", http.HandlerFunc(h.GetResumes))
	mux.Handle("/api/resumes/create", auth(http.HandlerFunc(h.CreateResume)))
	mux.Handle("/api/commands", auth(http.HandlerFunc(h.Command)))

	return middleware.CORSMiddleware(opts.CORSOrigin)(mux)
}
