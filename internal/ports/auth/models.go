package auth

// UserType distingue tutores de veterinarios.
type UserType string

const (
	UserTypeTutor UserType = "tutor"
	UserTypeVet   UserType = "vet"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID   string
	Email    string
	FullName string
	UserType UserType
}
