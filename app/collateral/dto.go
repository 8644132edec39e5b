package collateral

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// TokenResponse describes the token's metadata
type TokenResponse struct {
	Address     common.Address  `json:"address"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Decimals    int             `json:"decimals"`
	TotalSupply decimal.Decimal `json:"total_supply"`
	Owner       common.Address  `json:"owner"`
}

// BalanceResponse is an account balance
type BalanceResponse struct {
	Account common.Address  `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// AllowanceResponse is an owner/spender allowance
type AllowanceResponse struct {
	Owner     common.Address  `json:"owner"`
	Spender   common.Address  `json:"spender"`
	Allowance decimal.Decimal `json:"allowance"`
}

// TransferRequest moves the caller's tokens
type TransferRequest struct {
	To     string          `json:"to" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// TransferFromRequest moves another account's tokens against an allowance
type TransferFromRequest struct {
	From   string          `json:"from" binding:"required"`
	To     string          `json:"to" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// ApproveRequest sets the caller's allowance for a spender
type ApproveRequest struct {
	Spender string          `json:"spender" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// MintRequest creates tokens for an account
type MintRequest struct {
	To     string          `json:"to" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// BurnRequest destroys the caller's tokens
type BurnRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// OwnershipRequest hands the minting role to another account
type OwnershipRequest struct {
	NewOwner string `json:"new_owner" binding:"required"`
}

// ToTokenResponse projects a token's metadata
func ToTokenResponse(s Service) *TokenResponse {
	return &TokenResponse{
		Address:     s.Address(),
		Name:        s.Name(),
		Symbol:      s.Symbol(),
		Decimals:    s.Decimals(),
		TotalSupply: s.TotalSupply(),
		Owner:       s.Owner(),
	}
}
