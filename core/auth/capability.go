package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type CaregiverClaims struct {
	Sub    string   `json:"sub"`
	Iat    int64    `json:"iat"`
	Exp    int64    `json:"exp"`
	Iss    string   `json:"iss"`
	Roles  []string `json:"roles"`
	Reason string   `json:"reason"`
	jwt.RegisteredClaims
}

// CapabilityVerifier validates caregiver capability tokens. The Sub
// claim is the caller identity handed to the request policy.
type CapabilityVerifier struct {
	KeyProvider KeyProvider
}

func (v *CapabilityVerifier) VerifyCaregiverToken(tokenString string) (*CaregiverClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CaregiverClaims{}, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		return v.KeyProvider.GetPublicKey(kid)
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*CaregiverClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid caregiver token or claims")
}
