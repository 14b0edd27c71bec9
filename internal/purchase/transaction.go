// ABOUTME: Signed transaction verification for purchase validation responses
// ABOUTME: HS256 JWT carrying expiry and product claims, shared-secret verified

package purchase

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Transaction errors
var (
	ErrInvalidTransaction = errors.New("invalid signed transaction")
	ErrMissingClaim       = errors.New("missing required claim")
)

// transactionClaims is the claim set inside the service's signed payload.
type transactionClaims struct {
	ExpiresAtMs int64  `json:"expiresAtMs"`
	ProductID   string `json:"productId"`
	jwt.RegisteredClaims
}

// verifyTransaction checks the payload signature and extracts its claims.
func (c *Client) verifyTransaction(signed string) (*transactionClaims, error) {
	token, err := jwt.ParseWithClaims(signed, &transactionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(c.config.SigningSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if !token.Valid {
		return nil, ErrInvalidTransaction
	}

	claims, ok := token.Claims.(*transactionClaims)
	if !ok {
		return nil, ErrInvalidTransaction
	}
	if claims.ProductID == "" {
		return nil, fmt.Errorf("%w: productId", ErrMissingClaim)
	}
	if claims.ExpiresAtMs == 0 {
		return nil, fmt.Errorf("%w: expiresAtMs", ErrMissingClaim)
	}
	return claims, nil
}
