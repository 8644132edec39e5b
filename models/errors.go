package models

import "errors"

// Engine error taxonomy. Operations wrap these with fmt.Errorf("%w: ...") to
// attach detail, so callers classify with errors.Is.
var (
	ErrInvalidParameters     = errors.New("invalid parameters")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrExceedsSlippage       = errors.New("exceeds slippage bound")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrMarketNotActive       = errors.New("market is not active")
	ErrMarketNotResolved     = errors.New("market is not resolved")
	ErrTooEarly              = errors.New("resolution time not reached")
	ErrAlreadyClaimed        = errors.New("winnings already claimed")

	ErrMarketNotFound     = errors.New("market not found")
	ErrInvariantViolation = errors.New("collateral invariant violated")

	ErrAlreadyPredicted = errors.New("prediction already recorded")
	ErrAlreadyVoted     = errors.New("vote already recorded")
	ErrCommentNotFound  = errors.New("comment not found")
)

// Configuration errors.
var (
	ErrInvalidPrecision                = errors.New("invalid arithmetic precision")
	ErrInvalidArbitrageEpsilon         = errors.New("invalid arbitrage epsilon")
	ErrInvalidMaxOutcomes              = errors.New("invalid max outcomes")
	ErrInvalidMinLiquidity             = errors.New("invalid minimum initial liquidity")
	ErrInvalidMarketDuration           = errors.New("invalid market duration")
	ErrInvalidFeeRate                  = errors.New("invalid fee rate")
	ErrInvalidPageSize                 = errors.New("invalid page size")
	ErrInvalidTokenMetadata            = errors.New("invalid token metadata")
	ErrInvalidLeaderboardSize          = errors.New("invalid leaderboard size")
	ErrInvalidMetadataLength           = errors.New("invalid metadata length")
	ErrInvalidReputationWeights        = errors.New("invalid reputation weights")
	ErrInvalidJournalBackend           = errors.New("invalid journal backend")
	ErrInvalidJournalBuffer            = errors.New("invalid journal buffer size")
	ErrDatabaseCredentialNotConfigured = errors.New("database credentials not configured")
	ErrInvalidSymmetricKey             = errors.New("invalid token symmetric key")
)

// Journal entry validation errors.
var (
	ErrInvalidJournalKind   = errors.New("invalid journal entry kind")
	ErrInvalidJournalSource = errors.New("invalid journal entry source")
	ErrRecordNotFound       = errors.New("record not found")
)
