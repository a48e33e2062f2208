package domain

// User is the verified logical identity of a caller.
// Several physical connections may share one User.
type User struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}
