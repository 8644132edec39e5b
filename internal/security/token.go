package security

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	TokenScopeTrade = "trade"
	TokenScopeAdmin = "admin"
)

// Maker issues and verifies bearer tokens bound to an account address
type Maker interface {
	// CreateToken creates a new token for an account and duration
	CreateToken(subject common.Address, duration time.Duration, scope string) (string, *Payload, error)

	// VerifyToken checks if the token is valid or not
	VerifyToken(token string) (*Payload, error)
}
