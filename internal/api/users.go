package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avillega/trueque/internal/model"
	"github.com/avillega/trueque/internal/store"
)

// UsersHandler handles the admin-only account endpoints.
type UsersHandler struct {
	DB *sql.DB
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Delete handles DELETE /api/users/{id}. Soft delete, the account can no
// longer log in but its member profile and offer history stay intact.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if id == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	slog.Info("user deleted", "email", user.Email, "by", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
