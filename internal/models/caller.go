package models

// Caller is the authenticated identity an operation runs on behalf of.
// A nil *Caller means the request carried no valid token.
type Caller struct {
	UserID string
	RoleID string
	Email  string
	IP     string
	Agent  string
}

// CallerFromClaims converts verified token claims into a Caller. Nil claims give a nil caller.
func CallerFromClaims(claims *JWTClaims) *Caller {
	if claims == nil || claims.UserID == "" {
		return nil
	}
	return &Caller{UserID: claims.UserID, RoleID: claims.RoleID, Email: claims.Email}
}
