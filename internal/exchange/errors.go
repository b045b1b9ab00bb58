package exchange

import "errors"

// Business failures of the offer lifecycle. Each aborts its operation with
// no partial write; the API layer maps them to HTTP statuses with errors.Is.
var (
	// ErrMemberProfileMissing means the authenticated user has no member profile.
	ErrMemberProfileMissing = errors.New("no member profile for this account")

	// ErrItemNotFound means a referenced clothing item does not exist.
	ErrItemNotFound = errors.New("clothing item not found")

	// ErrOfferNotFound means the referenced offer does not exist.
	ErrOfferNotFound = errors.New("exchange offer not found")

	// ErrOwnershipViolation means the actor does not hold the role the
	// operation requires: offering an item they don't own, requesting their
	// own item, or acting on an offer they are not the right party to.
	ErrOwnershipViolation = errors.New("not authorized for this item or offer")

	// ErrItemUnavailable means an item is not in a status the operation accepts.
	ErrItemUnavailable = errors.New("item is not available for exchange")

	// ErrDuplicateOffer means a pending offer already pairs the two items.
	ErrDuplicateOffer = errors.New("a pending offer already exists for these items")

	// ErrInvalidStateTransition means the offer is not in the status the
	// action requires, including the case where a concurrent operation won
	// the transition first.
	ErrInvalidStateTransition = errors.New("offer is not in the required status for this action")

	// ErrOwnerResolution means a snapshotted participant no longer resolves
	// to a member record at completion time.
	ErrOwnerResolution = errors.New("offer participant no longer resolves to a member")
)
