package wire

import "encoding/json"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Salt      string `json:"salt"`
	AuthProof string `json:"auth_proof"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type GetSaltRequest struct {
	Email string `json:"email"`
}

type GetSaltResponse struct {
	Salt string `json:"salt"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	AuthProof string `json:"auth_proof"`
}

// LoginResponse carries either a session token or a second factor ticket.
type LoginResponse struct {
	Token         string `json:"token,omitempty"`
	Premium       bool   `json:"is_premium"`
	TwoFARequired bool   `json:"twofa_required"`
	Ticket        string `json:"ticket,omitempty"`
}

type VerifySecondFactorRequest struct {
	Ticket string `json:"ticket"`
	OTP    string `json:"otp"`
}

type SessionResponse struct {
	Token   string `json:"token"`
	Premium bool   `json:"is_premium"`
}

type GetDocumentRequest struct {
	Kind string `json:"kind"`
}

type GetDocumentResponse struct {
	Document json.RawMessage `json:"encrypted_blob"`
}

type PutDocumentRequest struct {
	Kind     string          `json:"kind"`
	Document json.RawMessage `json:"encrypted_blob"`
}

type PutDocumentResponse struct{}

type SetupSecondFactorRequest struct{}

type SetupSecondFactorResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

type EnableSecondFactorRequest struct {
	OTP string `json:"token"`
}

type SecondFactorStatusRequest struct{}

type SecondFactorStatusResponse struct {
	Enabled bool `json:"twofa_enabled"`
}

type DisableSecondFactorRequest struct {
	AuthProof string `json:"auth_proof"`
}

type VerifyPremiumRequest struct {
	Key string `json:"key"`
}

type PremiumStatusRequest struct{}

type PremiumStatusResponse struct {
	Premium bool `json:"is_premium"`
}

type DisablePremiumRequest struct {
	AuthProof string `json:"auth_proof"`
}

type Empty struct{}
