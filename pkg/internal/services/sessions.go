package services

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// SessionClaims is the session token issued by the identity provider.
// The subject is the account id.
type SessionClaims struct {
	Name  string `json:"name"`
	Nick  string `json:"nick"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v SessionClaims) Account() models.Account {
	return models.Account{
		ID:    v.Subject,
		Name:  v.Name,
		Nick:  v.Nick,
		Email: v.Email,
	}
}

func CreateSessionToken(account models.Account, duration time.Duration) (string, error) {
	claims := SessionClaims{
		Name:  account.Name,
		Nick:  account.Nick,
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	tks, err := token.SignedString([]byte(viper.GetString("security.session_secret")))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return tks, nil
}

func ParseSessionToken(tk string) (SessionClaims, error) {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(tk, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		return []byte(viper.GetString("security.session_secret")), nil
	})
	if err != nil {
		return claims, err
	}
	if !token.Valid {
		return claims, fmt.Errorf("invalid token")
	}
	if len(claims.Subject) == 0 {
		return claims, fmt.Errorf("token has no subject")
	}
	return claims, nil
}
