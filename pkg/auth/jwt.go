package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/raccoonpkg/rack/pkg/errs"
)

// Claims is the session claim set: the standard registered claims with the
// user id carried in the subject.
type Claims struct {
	jwt.RegisteredClaims
}

// signToken produces a signed HS256 bearer string embedding the user id and
// an expiry.
func signToken(userID uuid.UUID, key []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	return token.SignedString(key)
}

// parseToken validates the signature and expiry and returns the embedded user
// id. Every failure mode collapses to Unauthenticated: the caller learns
// nothing about why the claim was rejected.
func parseToken(tokenString string, key []byte) (uuid.UUID, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, errs.Wrap(errs.KindUnauthenticated, "could not validate credentials", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.KindUnauthenticated, "could not validate credentials", err)
	}

	return userID, nil
}
