package functions

import "context"

// Funciones remotas conocidas.
const (
	ValidateLicenseNumber = "validate-license-number"
	SendVetInvite         = "send-vet-invite"
	SendEmail             = "send-email"
	GetUserProfile        = "get-user-profile"
	UpdateUserProfile     = "update-user-profile"
	CheckAuth             = "check-auth"
	GetAvailableSlots     = "get-available-slots"
)

// Invoker llama una función remota por nombre (request/response).
type Invoker interface {
	Invoke(ctx context.Context, name string, in any, out any) error
}
