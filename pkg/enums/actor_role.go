package enums

// ActorRole is the role carried in access token claims. Authorization
// decisions stay with the API layer; the engine only records actors.
type ActorRole string

const (
	ActorRoleOperator ActorRole = "operator"
	ActorRoleBidder   ActorRole = "bidder"
	ActorRoleViewer   ActorRole = "viewer"
)

// IsValid reports whether the role is recognized.
func (r ActorRole) IsValid() bool {
	switch r {
	case ActorRoleOperator, ActorRoleBidder, ActorRoleViewer:
		return true
	}
	return false
}
