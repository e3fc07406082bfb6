// internal/handlers/users/users.go
package users

import (
	"net/http"

	"taskhub/internal/auth"
	"taskhub/internal/httpx"
	"taskhub/internal/models"
	"taskhub/internal/repo"
)

type Handler struct {
	store repo.Store
}

func New(store repo.Store) *Handler {
	return &Handler{store: store}
}

// List returns the users the actor may see as assignment targets:
// themselves, anyone of the same rank, and anyone below. Higher-ranked
// users are filtered out.
// GET /api/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Message(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	actorRank, err := models.Rank(actor.Role)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	all, err := h.store.ListUsers(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	visible := []models.PublicUser{}
	for _, u := range all {
		if u.ID == actor.ID {
			visible = append(visible, u.Public())
			continue
		}
		rank, err := models.Rank(u.Role)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		if rank <= actorRank {
			visible = append(visible, u.Public())
		}
	}
	httpx.JSON(w, http.StatusOK, visible)
}
