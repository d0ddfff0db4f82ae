package domain

// Actor is the caller on whose behalf a change is made.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) Owns(userID *string) bool {
	return userID != nil && *userID == a.UserID
}
