package auth

const (
	ContextKeyClaims      = "auth_claims"
	ContextKeyTokenSource = "auth_token_source"

	headerAuthorization = "Authorization"

	bearerScheme    = "bearer"
	authHeaderParts = 2
)

const (
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgInvalidUserIDClaim      = "invalid user id claim"
	msgTokenRevoked            = "token has been revoked"
	msgUserNotAuthenticated    = "user not authenticated"
	msgInvalidClaimsCtx        = "invalid claims in context"
	msgSubjectRestoreFailedFmt = "session restore failed for user %s: %v"
	msgSubjectRejectedFmt      = "session token rejected: %v"
)

// TokenSource records where the session token was read from.
type TokenSource string

const (
	TokenSourceBearer TokenSource = "bearer"
	TokenSourceCookie TokenSource = "cookie"
)
