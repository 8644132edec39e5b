package social

import (
	"github.com/shopspring/decimal"
)

// PredictionRequest represents a prediction on a market
type PredictionRequest struct {
	Outcome     *int   `json:"outcome" binding:"required,min=0"`
	Confidence  int    `json:"confidence" binding:"required,min=1,max=100"`
	MetadataURI string `json:"metadata_uri"`
}

// CommentRequest represents a new comment
type CommentRequest struct {
	MetadataURI string `json:"metadata_uri" binding:"required"`
}

// VoteRequest represents a vote on a comment
type VoteRequest struct {
	Upvote bool `json:"upvote"`
}

// PredictionResultRequest is the owner's manual scoring of one prediction
type PredictionResultRequest struct {
	User           string          `json:"user" binding:"required"`
	Market         string          `json:"market" binding:"required"`
	WinningOutcome *int            `json:"winning_outcome" binding:"required,min=0"`
	Profit         decimal.Decimal `json:"profit"`
}

// OwnerRequest names a new ledger owner
type OwnerRequest struct {
	Address string `json:"address" binding:"required"`
}

// VoteStatusResponse reports whether a voter has voted on a comment
type VoteStatusResponse struct {
	Voted bool `json:"voted"`
}
