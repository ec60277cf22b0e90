// internal/domain/models/authmethods.go
package models

// AuthMethod is a way a user can sign in.
type AuthMethod struct {
	Value string // The value stored in the database
	Label string // The display label
}

// Auth method values.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// AllAuthMethods lists every supported sign-in method.
var AllAuthMethods = []AuthMethod{
	{Value: AuthMethodPassword, Label: "Password"},
	{Value: AuthMethodGoogle, Label: "Google"},
}

// IsValidAuthMethod checks if a value is a supported auth method.
func IsValidAuthMethod(value string) bool {
	for _, m := range AllAuthMethods {
		if m.Value == value {
			return true
		}
	}
	return false
}
