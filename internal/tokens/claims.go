package tokens

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/news_website/internal/models"
)

const refreshType = "refresh"

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Principal is what a verified access token proves about the caller.
type Principal struct {
	Subject string
	Role    models.Role
}
