// Package account resolves caller credentials to a subscription tier. The
// tier decides which upstream datasets the aggregation is allowed to fan out
// to; anonymous callers always resolve to the free tier.
package account

import (
	"context"
	"errors"
)

// Tier is a subscription level.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// Predefined resolution errors.
var (
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrCredentialExpired   = errors.New("credential has expired")
	ErrResolverUnavailable = errors.New("account resolver unavailable")
)

// Resolver maps a presented credential to a tier. An empty credential is the
// anonymous caller and must resolve to TierFree without error.
type Resolver interface {
	ResolveTier(ctx context.Context, credential string) (Tier, error)
}
