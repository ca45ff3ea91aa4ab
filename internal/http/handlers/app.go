package handlers

import (
	"encoding/json"
	"net/http"

	"docgen/internal/engine"
	"docgen/internal/infra"
)

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	Service *engine.Service
	Logger  infra.Logger
}

func NewApp(service *engine.Service, logger infra.Logger) *App {
	return &App{Service: service, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
