package ports

import "github.com/codetyper/codetyper-api/internal/core/domain"

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(username string, role domain.Role, userID string) (string, error)
}

// TokenValidator verifies session tokens. It is stateless and never consults a
// store; any error is a rejection.
type TokenValidator interface {
	Validate(token string) (domain.Session, error)
}
