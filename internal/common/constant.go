package common

const (
	// AccessTokenCookieName and RefreshTokenCookieName name the cookies the
	// REST layer sets on login and refresh.
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"

	// RequestIDHeaderName carries the per-request id on responses.
	RequestIDHeaderName = "X-Request-ID"
)
