package memory

const (
	errUserNotFound   = "user not found"
	errEmailExists    = "user with this email already exists"
	errEmailRequired  = "email is required"
	errFailedNewIDFmt = "failed to generate user id: %v"
)
