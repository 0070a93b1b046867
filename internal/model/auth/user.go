package auth

// User is the identity resolved from the protected credential sheet.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

// Identity returns the most specific identifier available for log records.
func (u User) Identity() string {
	switch {
	case u.ID != "":
		return u.ID
	case u.Name != "":
		return u.Name
	default:
		return u.PIN
	}
}
