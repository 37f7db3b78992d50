package auth

// JWTVerifier verifies bearer tokens. The middleware only depends on this
// interface so tests can stub verification.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired or anonymous.
	VerifyToken(tokenString string) (*Claims, error)

	// Close releases resources held by the verifier.
	Close() error
}
