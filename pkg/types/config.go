package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"bloodlink"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	CORSOrigin      string `envconfig:"CORS_ORIGIN" default:"http://localhost:1001"`

	// Access tokens
	TokenSigningKey string `envconfig:"TOKEN_SIGNING_KEY"`
	TokenIssuer     string `envconfig:"TOKEN_ISSUER" default:"bloodlink"`
	TokenTTLHours   uint   `envconfig:"TOKEN_TTL_HOURS" default:"360"` // 15 days

	// Optional external identity provider. When set, tokens that are not
	// signed with TokenSigningKey are verified against this key set.
	JWKSURL string `envconfig:"JWKS_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Matching
	OtherCityLimit uint64 `envconfig:"OTHER_CITY_LIMIT" default:"10"`
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
