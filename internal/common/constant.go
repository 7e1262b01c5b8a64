package common

// AuthorizationHeaderName is the HTTP header carrying the opaque bearer
// credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token value inside the authorization header.
const BearerPrefix = "Bearer "
