package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TierClaims are the claims carried by a subscription token.
type TierClaims struct {
	jwt.RegisteredClaims

	// Tier is the subscription level granted to the token holder.
	Tier string `json:"tier"`
}

// JWTResolver resolves tiers from HS256-signed bearer tokens.
type JWTResolver struct {
	signingKey []byte
	issuer     string
}

// JWTResolverConfig holds configuration for the JWT resolver.
type JWTResolverConfig struct {
	// SigningKey is the secret key subscription tokens are signed with.
	SigningKey string

	// Issuer, when set, is enforced against the token's iss claim.
	Issuer string
}

func NewJWTResolver(cfg JWTResolverConfig) *JWTResolver {
	return &JWTResolver{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
	}
}

// ResolveTier validates the token and returns the tier it grants. An empty
// credential is anonymous and resolves to the free tier. Any valid token
// without a paid tier claim also resolves to free.
func (r *JWTResolver) ResolveTier(ctx context.Context, credential string) (Tier, error) {
	if credential == "" {
		return TierFree, nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	token, err := jwt.ParseWithClaims(credential, &TierClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.signingKey, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrCredentialExpired
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidCredential, err.Error())
	}

	claims, ok := token.Claims.(*TierClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidCredential
	}

	if Tier(claims.Tier) == TierPaid {
		return TierPaid, nil
	}
	return TierFree, nil
}
