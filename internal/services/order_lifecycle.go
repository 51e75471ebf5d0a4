package services

import (
	"fmt"

	"canedrop/internal/models"
)

// transition is one allowed status change and the capability needed to make it.
type transition struct {
	from, to models.OrderStatus
	needs    models.Capability
}

// orderTransitions lists every legal status change. Delivered is terminal.
var orderTransitions = []transition{
	{from: models.StatusPending, to: models.StatusDelivered, needs: models.CapUpdateOrderStatus},
}

// lookupTransition finds the transition into to. Orders never move back to pending.
func lookupTransition(to models.OrderStatus) (transition, error) {
	if !to.Valid() {
		return transition{}, NewValidationError("status", fmt.Sprintf("unknown status %q", to))
	}
	for _, t := range orderTransitions {
		if t.to == to {
			return t, nil
		}
	}
	return transition{}, fmt.Errorf("no transition into %q: %w", to, ErrInvalidTransition)
}

// authorize checks that principal is signed in and holds c.
func authorize(principal models.Principal, c models.Capability) error {
	if !principal.Authenticated() {
		return ErrAuthenticationRequired
	}
	if !principal.Role.Can(c) {
		return fmt.Errorf("%s may not %s: %w", principal.Role, c, ErrForbidden)
	}
	return nil
}
