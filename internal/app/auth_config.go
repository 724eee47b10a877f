package app

import "github.com/dineqr/dineqr/internal/auth"

// TokenServiceConfig converts AuthSettings into the parameters expected by the token service.
func (c AuthSettings) TokenServiceConfig() auth.TokenConfig {
	ttl := c.JWT.SessionTTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}

	return auth.TokenConfig{
		Secret:     c.JWT.Secret,
		Issuer:     c.JWT.Issuer,
		SessionTTL: ttl,
	}
}
