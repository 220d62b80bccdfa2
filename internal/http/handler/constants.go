package handler

const (
	jsonKeyError   = "error"
	jsonKeyMessage = "message"

	paramID = "id"
)

const (
	msgContentTypeJSONRequired = "content type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidCredentials      = "invalid email or password"
	msgGenerateTokenFail       = "failed to create session"
	msgLoggedOut               = "logged out"
	msgInvalidUserID           = "invalid user id"
	msgUserNotFound            = "user not found"
	msgInvalidRole             = "unknown role"
	msgInvalidPermission       = "unknown permission"
	msgCannotChangeOwnRole     = "cannot change your own role"
	msgCannotManageUser        = "cannot manage a user above your level"
	msgCannotAssignRole        = "cannot assign a role above your own"
	msgCannotGrantPermission   = "cannot grant a permission you do not hold"
	msgPasswordProcessFail     = "failed to process password"
	msgEmailAlreadyExists      = "email already exists"
	msgListUsersFail           = "failed to list users"
	msgUpdateUserFail          = "failed to update user"
	msgCreateUserFail          = "failed to create user"
	msgCSRFTokenFail           = "failed to issue CSRF token"
	msgInvalidLimit            = "invalid limit"
)
