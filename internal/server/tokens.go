package server

import (
	"fmt"

	"github.com/mgallardo/freightdeck/internal/server/auth"
	"github.com/mgallardo/freightdeck/internal/server/config"
)

// MintToken issues a bearer token for clientID, signed with the configured
// secret and valid for the configured window. This is the operator path for
// handing a console a credential when the API runs with auth enabled.
func MintToken(c *config.Config, clientID string) (string, error) {
	if c.AuthSecret == "" {
		return "", fmt.Errorf("auth.secret is not configured, nothing to sign with")
	}
	if clientID == "" {
		return "", fmt.Errorf("client id is required")
	}
	return auth.GenerateToken(clientID, []byte(c.AuthSecret), c.TokenTTL)
}
