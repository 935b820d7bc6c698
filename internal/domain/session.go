package domain

// User is the signup form submitted to the backend.
type User struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	ID        string `json:"_id,omitempty"`
}

// Session identifies a logged-in user and carries the backend bearer token.
type Session struct {
	ID    string `json:"_id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token" validate:"required"`
}

// TwoFactorChallenge is returned by login when a second factor is required.
// TempToken is exchanged for a Session once the code is verified.
type TwoFactorChallenge struct {
	TwoFactorRequired bool   `json:"twoFactorRequired"`
	TempToken         string `json:"tempToken"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	ID                string `json:"_id"`
}

// LoginResult holds exactly one of Session or Challenge.
type LoginResult struct {
	Session   *Session
	Challenge *TwoFactorChallenge
}

// TwoFactorSetup carries the provisioning URL for an authenticator app.
type TwoFactorSetup struct {
	OTPAuthURL string `json:"otpauthUrl"`
}

// TwoFactorActivation is the result of confirming second-factor setup.
type TwoFactorActivation struct {
	Enabled       bool     `json:"enabled"`
	RecoveryCodes []string `json:"recoveryCodes"`
}
