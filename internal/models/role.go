package models

// Role is one of the two account kinds the shop knows about.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
)

// Capability names a single thing a role is allowed to do.
type Capability string

const (
	CapPlaceOrder         Capability = "place_order"
	CapViewOwnOrders      Capability = "view_own_orders"
	CapEditProfile        Capability = "edit_profile"
	CapViewOrderQueue     Capability = "view_order_queue"
	CapUpdateOrderStatus  Capability = "update_order_status"
	CapManageShopSettings Capability = "manage_shop_settings"
	CapViewOrderSummary   Capability = "view_order_summary"
	CapViewFeedback       Capability = "view_feedback"
)

// roleCapabilities is the authoritative permission table.
var roleCapabilities = map[Role][]Capability{
	RoleCustomer: {
		CapPlaceOrder,
		CapViewOwnOrders,
		CapEditProfile,
	},
	RoleOwner: {
		CapViewOrderQueue,
		CapUpdateOrderStatus,
		CapManageShopSettings,
		CapViewOrderSummary,
		CapViewFeedback,
		CapEditProfile,
	},
}

// Valid reports whether r belongs to the closed set of roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether r grants c.
func (r Role) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// Capabilities returns a copy of everything r grants.
func (r Role) Capabilities() []Capability {
	caps := roleCapabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

// Authenticated is false for the zero Principal.
func (p Principal) Authenticated() bool {
	return p.UserID != "" && p.Role.Valid()
}
