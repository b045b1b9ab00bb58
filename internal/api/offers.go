package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/avillega/trueque/internal/exchange"
	"github.com/avillega/trueque/internal/model"
	"github.com/avillega/trueque/internal/store"
)

// OffersHandler handles the exchange offer endpoints. All lifecycle
// operations go through the exchange engine; the handler only translates
// between HTTP and the engine's errors.
type OffersHandler struct {
	DB     *sql.DB
	Engine *exchange.Engine
}

type createOfferRequest struct {
	OfferedItemID   int64 `json:"offered_item_id"`
	RequestedItemID int64 `json:"requested_item_id"`
}

// errorStatus maps exchange engine errors to HTTP status codes.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, exchange.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, exchange.ErrOfferNotFound):
		return http.StatusNotFound, "offer not found"
	case errors.Is(err, exchange.ErrOwnershipViolation):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, exchange.ErrMemberProfileMissing):
		return http.StatusForbidden, "no member profile for this account"
	case errors.Is(err, exchange.ErrItemUnavailable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, exchange.ErrDuplicateOffer):
		return http.StatusConflict, "a pending offer already exists for these items"
	case errors.Is(err, exchange.ErrInvalidStateTransition):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// Create handles POST /api/offers.
func (h *OffersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OfferedItemID == 0 || req.RequestedItemID == 0 {
		jsonError(w, http.StatusBadRequest, "offered_item_id and requested_item_id required")
		return
	}
	if req.OfferedItemID == req.RequestedItemID {
		jsonError(w, http.StatusBadRequest, "cannot offer an item for itself")
		return
	}

	offer, err := h.Engine.Initiate(r.Context(), claims.UserID, req.OfferedItemID, req.RequestedItemID)
	if err != nil {
		status, msg := errorStatus(err)
		jsonError(w, status, msg)
		return
	}

	jsonResponse(w, http.StatusCreated, offer)
}

// List handles GET /api/offers. With ?role=sent or ?role=received it returns
// a single array; without it both directions are returned together.
func (h *OffersHandler) List(w http.ResponseWriter, r *http.Request) {
	member := currentMember(w, r, h.DB)
	if member == nil {
		return
	}

	role := r.URL.Query().Get("role")
	switch role {
	case "sent":
		offers, err := store.ListOffersByMember(r.Context(), h.DB, member.ID, store.OfferRoleOffering)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to list offers")
			return
		}
		jsonResponse(w, http.StatusOK, emptyIfNil(offers))
	case "received":
		offers, err := store.ListOffersByMember(r.Context(), h.DB, member.ID, store.OfferRoleReceiving)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to list offers")
			return
		}
		jsonResponse(w, http.StatusOK, emptyIfNil(offers))
	case "":
		sent, err := store.ListOffersByMember(r.Context(), h.DB, member.ID, store.OfferRoleOffering)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to list offers")
			return
		}
		received, err := store.ListOffersByMember(r.Context(), h.DB, member.ID, store.OfferRoleReceiving)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to list offers")
			return
		}
		jsonResponse(w, http.StatusOK, map[string][]model.Offer{
			"sent":     emptyIfNil(sent),
			"received": emptyIfNil(received),
		})
	default:
		jsonError(w, http.StatusBadRequest, "role must be sent or received")
	}
}

func emptyIfNil(offers []model.Offer) []model.Offer {
	if offers == nil {
		return []model.Offer{}
	}
	return offers
}

// Get handles GET /api/offers/{id}. Offers are only visible to their two
// participants; everyone else gets a 404 rather than a 403 so offer IDs
// leak nothing.
func (h *OffersHandler) Get(w http.ResponseWriter, r *http.Request) {
	member := currentMember(w, r, h.DB)
	if member == nil {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	offer, err := store.GetOffer(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get offer")
		return
	}
	if offer == nil || (offer.OfferingMemberID != member.ID && offer.ReceivingMemberID != member.ID) {
		jsonError(w, http.StatusNotFound, "offer not found")
		return
	}
	jsonResponse(w, http.StatusOK, offer)
}

// transition runs one engine lifecycle operation identified by the path id.
func (h *OffersHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actorUserID, offerID int64) (*model.Offer, error)) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	offer, err := op(r.Context(), claims.UserID, id)
	if err != nil {
		status, msg := errorStatus(err)
		jsonError(w, status, msg)
		return
	}

	jsonResponse(w, http.StatusOK, offer)
}

// Accept handles POST /api/offers/{id}/accept.
func (h *OffersHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Engine.Accept)
}

// Reject handles POST /api/offers/{id}/reject.
func (h *OffersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Engine.Reject)
}

// Cancel handles POST /api/offers/{id}/cancel.
func (h *OffersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Engine.Cancel)
}

// Complete handles POST /api/offers/{id}/complete.
func (h *OffersHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Engine.Complete)
}
