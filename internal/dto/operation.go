package dto

import "encoding/json"

// OperationRequest is the body of the single query endpoint.
type OperationRequest struct {
	Operation string          `json:"operation" binding:"required"`
	Variables json.RawMessage `json:"variables"`
}

// TokenAuthRequest is the payload of tokenAuth.
type TokenAuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenRequest carries a token for verifyToken and refreshToken.
type TokenRequest struct {
	Token string `json:"token"`
}
