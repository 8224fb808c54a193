package enums

// MemberRole identifies the actor type carried in access tokens.
type MemberRole string

const (
	MemberRoleCustomer MemberRole = "customer"
	MemberRoleAdmin    MemberRole = "admin"
)

func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleCustomer, MemberRoleAdmin:
		return true
	}
	return false
}

func (r MemberRole) String() string {
	return string(r)
}
