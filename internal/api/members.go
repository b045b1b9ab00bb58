package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/avillega/trueque/internal/model"
	"github.com/avillega/trueque/internal/store"
)

// MembersHandler handles the member directory and profile endpoints.
type MembersHandler struct {
	DB *sql.DB
}

type updateMemberRequest struct {
	Name    string `json:"name"`
	Gender  string `json:"gender"`
	City    string `json:"city"`
	Country string `json:"country"`
	Bio     string `json:"bio"`
}

// currentMember resolves the authenticated user's member profile, writing
// the error response itself when that fails.
func currentMember(w http.ResponseWriter, r *http.Request, db *sql.DB) *model.Member {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return nil
	}

	member, err := store.GetMemberByUserID(r.Context(), db, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	if member == nil {
		jsonError(w, http.StatusForbidden, "no member profile for this account")
		return nil
	}
	return member
}

// List handles GET /api/members. The directory never includes the caller,
// you cannot swap with yourself.
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	self := currentMember(w, r, h.DB)
	if self == nil {
		return
	}

	members, err := store.ListMembers(r.Context(), h.DB, self.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	jsonResponse(w, http.StatusOK, members)
}

// Get handles GET /api/members/{id}.
func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := store.GetMember(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		jsonError(w, http.StatusNotFound, "member not found")
		return
	}
	jsonResponse(w, http.StatusOK, member)
}

// Me handles GET /api/members/me.
func (h *MembersHandler) Me(w http.ResponseWriter, r *http.Request) {
	member := currentMember(w, r, h.DB)
	if member == nil {
		return
	}
	jsonResponse(w, http.StatusOK, member)
}

// UpdateMe handles PUT /api/members/me.
func (h *MembersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	member := currentMember(w, r, h.DB)
	if member == nil {
		return
	}

	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateMember(r.Context(), h.DB, member.ID, req.Name, req.Gender, req.City, req.Country, req.Bio); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	updated, _ := store.GetMember(r.Context(), h.DB, member.ID)
	jsonResponse(w, http.StatusOK, updated)
}

// MyItems handles GET /api/members/me/items, the caller's closet including
// unavailable and exchanged garments.
func (h *MembersHandler) MyItems(w http.ResponseWriter, r *http.Request) {
	member := currentMember(w, r, h.DB)
	if member == nil {
		return
	}

	items, err := store.ListItemsByMember(r.Context(), h.DB, member.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}
