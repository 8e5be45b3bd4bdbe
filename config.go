package auth

// AuthConfig is a plain value implementation of Config for services that do
// not bring their own configuration container.
type AuthConfig struct {
	SigningKey      string
	TokenExpiration int // minutes; 0 means DefaultTokenExpirationMinutes
	Issuer          string
	Audience        []string
}

func (c AuthConfig) GetSigningKey() string { return c.SigningKey }

func (c AuthConfig) GetTokenExpiration() int { return c.TokenExpiration }

func (c AuthConfig) GetIssuer() string { return c.Issuer }

func (c AuthConfig) GetAudience() []string { return c.Audience }

var _ Config = AuthConfig{}
