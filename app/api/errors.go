package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/models"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// engineErrors maps the engine's error taxonomy onto HTTP responses. Order
// matters only where one sentinel could wrap another.
var engineErrors = []errorMapping{
	{models.ErrInvalidParameters, http.StatusBadRequest, "INVALID_PARAMETERS"},
	{models.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
	{models.ErrExceedsSlippage, http.StatusConflict, "EXCEEDS_SLIPPAGE"},
	{models.ErrInsufficientBalance, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"},
	{models.ErrInsufficientAllowance, http.StatusUnprocessableEntity, "INSUFFICIENT_ALLOWANCE"},
	{models.ErrMarketNotActive, http.StatusConflict, "MARKET_NOT_ACTIVE"},
	{models.ErrMarketNotResolved, http.StatusConflict, "MARKET_NOT_RESOLVED"},
	{models.ErrTooEarly, http.StatusConflict, "TOO_EARLY"},
	{models.ErrAlreadyClaimed, http.StatusConflict, "ALREADY_CLAIMED"},
	{models.ErrAlreadyPredicted, http.StatusConflict, "ALREADY_PREDICTED"},
	{models.ErrAlreadyVoted, http.StatusConflict, "ALREADY_VOTED"},
	{models.ErrMarketNotFound, http.StatusNotFound, "NOT_FOUND"},
	{models.ErrCommentNotFound, http.StatusNotFound, "NOT_FOUND"},
	{models.ErrRecordNotFound, http.StatusNotFound, "NOT_FOUND"},
}

// HandleEngineError writes the response for an error returned by an engine operation
func HandleEngineError(c *gin.Context, err error) {
	for _, m := range engineErrors {
		if errors.Is(err, m.target) {
			ErrorResponse(c, m.status, m.code, err.Error(), nil)
			return
		}
	}
	InternalErrorResponse(c, "Operation failed")
}
