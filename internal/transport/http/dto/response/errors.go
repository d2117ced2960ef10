package response

var (
	ErrInvalidCredentials = Error("Invalid username or password")
	ErrNoToken            = Error("Not authorized, no token provided")
	ErrTokenRevoked       = Error("Token has been revoked. Please login again.")
	ErrTokenExpired       = Error("Token expired")
	ErrTokenInvalid       = Error("Invalid token")
	ErrAdminNotFound      = Error("Admin not found")
	ErrForbidden          = Error("Access denied. Admin only.")
	ErrItemNotFound       = Error("Gallery item not found")
	ErrNoFile             = Error("No image file provided")
	ErrFileTooLarge       = Error("File too large. Maximum size is 10MB")
	ErrDuplicateKey       = Error("Duplicate field value entered")
	ErrInternal           = Error("Internal Server Error")
)
