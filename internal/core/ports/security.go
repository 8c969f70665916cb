package ports

// PasswordHasher abstracts the one-way password hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches hash. It never errors on mismatch.
	Verify(plain, hash string) bool
}

type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// TokenVerifier returns the subject of a valid token, or one of
// domain.ErrTokenExpired / domain.ErrTokenInvalid.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}
