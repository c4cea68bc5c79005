package admin

// TokenManager abstracts session token issuance and verification.
type TokenManager interface {
	Generate(subject string) (string, error)
	Validate(token string) (string, error)
}
