package enums

import "fmt"

// UserType identifies which side of the marketplace a payee sits on.
type UserType string

const (
	UserTypeAdvertiser UserType = "advertiser"
	UserTypeClient     UserType = "client"
)

// IsValid reports whether the value is known.
func (u UserType) IsValid() bool {
	return u == UserTypeAdvertiser || u == UserTypeClient
}

// ParseUserType converts raw input into a UserType.
func ParseUserType(value string) (UserType, error) {
	switch UserType(value) {
	case UserTypeAdvertiser, UserTypeClient:
		return UserType(value), nil
	}
	return "", fmt.Errorf("invalid user type %q", value)
}

// UserRole is the role carried by an authenticated actor.
type UserRole string

const (
	UserRoleAdvertiser UserRole = "advertiser"
	UserRoleClient     UserRole = "client"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSystem     UserRole = "system"
)

var validUserRoles = []UserRole{
	UserRoleAdvertiser,
	UserRoleClient,
	UserRoleAdmin,
	UserRoleSystem,
}

// IsValid reports whether the value is known.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
