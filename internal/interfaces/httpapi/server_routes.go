package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /login", handler.Login)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/matches", RequireAuth(verifier, http.HandlerFunc(handler.ListMatches)))
	mux.Handle("POST /v1/matches/import", RequireAuth(verifier, http.HandlerFunc(handler.ImportMatches)))
}
