package chat

// User is referenced by conversations; this service never writes users.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SeedUsers provides the accounts available in a fresh store.
func SeedUsers() []User {
	return []User{
		{ID: 1, Email: "demo@example.com", Name: "Demo Customer"},
		{ID: 2, Email: "support@example.com", Name: "Support Tester"},
	}
}
