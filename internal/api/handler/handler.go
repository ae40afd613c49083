package handler

import (
	"mindcare/backend/internal/auth"
	"mindcare/backend/internal/realtime"
	"mindcare/backend/internal/storage"
)

// Handler carries the dependencies shared by every HTTP endpoint.
type Handler struct {
	Hub   *realtime.Hub
	Store storage.Store
	Auth  auth.Authenticator
}

func NewHandler(hub *realtime.Hub, store storage.Store, a auth.Authenticator) *Handler {
	return &Handler{Hub: hub, Store: store, Auth: a}
}
