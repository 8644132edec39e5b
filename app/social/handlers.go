package social

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/app/api"
	"github.com/joefazee/categorical/internal/validator"
)

// Handler handles HTTP requests for the social ledger
type Handler struct {
	service Service
}

// NewHandler creates a new social handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		api.BadRequestResponse(c, "Invalid "+key)
		return 0, false
	}
	return v, true
}

func commentID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("comment"), 10, 64)
	if err != nil {
		api.BadRequestResponse(c, "Invalid comment id")
		return 0, false
	}
	return id, true
}

// GetLeaderboard returns the top ranked users
// @Summary      Get leaderboard
// @Description  Returns the top ranked users.
// @Tags         Social
// @Produce      json
// @Param        limit    query int false "Number of entries"
// @Success      200  {object}  api.Response{data=[]models.LeaderboardEntry}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/leaderboard [get]
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	entries := h.service.GetLeaderboard(limit)
	api.ListResponse(c, "Leaderboard retrieved successfully", entries, len(entries))
}

// GetUserStats returns a user's record and rank
// @Summary      Get user stats
// @Description  Returns a user's record and rank.
// @Tags         Social
// @Produce      json
// @Param        user     path string true "User address"
// @Success      200  {object}  api.Response{data=models.UserStatsWithRank}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/users/{user}/stats [get]
func (h *Handler) GetUserStats(c *gin.Context) {
	user, ok := api.ParseAddress(c, "user")
	if !ok {
		return
	}
	api.SuccessResponse(c, http.StatusOK, "User stats retrieved successfully", h.service.GetUserStats(user))
}

// GetUserPredictionHistory returns a user's latest predictions
// @Summary      Get prediction history
// @Description  Returns a user's latest predictions.
// @Tags         Social
// @Produce      json
// @Param        user     path string true "User address"
// @Param        limit    query int false "Number of predictions"
// @Success      200  {object}  api.Response{data=[]models.Prediction}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/users/{user}/predictions [get]
func (h *Handler) GetUserPredictionHistory(c *gin.Context) {
	user, ok := api.ParseAddress(c, "user")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	history := h.service.GetUserPredictionHistory(user, limit)
	api.ListResponse(c, "Predictions retrieved successfully", history, len(history))
}

// GetUserPrediction returns one user's prediction on a market
// @Summary      Get prediction
// @Description  Returns one user's prediction on a market.
// @Tags         Social
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        user     path string true "User address"
// @Success      200  {object}  api.Response{data=models.Prediction}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/markets/{market}/predictions/{user} [get]
func (h *Handler) GetUserPrediction(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	user, ok := api.ParseAddress(c, "user")
	if !ok {
		return
	}

	p, err := h.service.GetUserPrediction(user, market)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Prediction retrieved successfully", p)
}

// MakePrediction records the caller's prediction
// @Summary      Make prediction
// @Description  Records the caller's prediction.
// @Tags         Social
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        request  body  PredictionRequest  true  "Make prediction Request"
// @Security     BearerAuth
// @Success      201  {object}  api.Response{data=models.Prediction}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/markets/{market}/predictions [post]
func (h *Handler) MakePrediction(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req PredictionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.MakePrediction(c.Request.Context(), caller, market, *req.Outcome, req.Confidence, req.MetadataURI)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.CreatedResponse(c, "Prediction recorded", p)
}

// GetMarketComments pages through a market's comments
// @Summary      List comments
// @Description  Pages through a market's comments.
// @Tags         Social
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        offset   query int false "Window offset" default(0)
// @Param        limit    query int false "Window size" default(20)
// @Success      200  {object}  api.Response{data=[]models.Comment}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/markets/{market}/comments [get]
func (h *Handler) GetMarketComments(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return
	}

	comments, total, err := h.service.GetMarketComments(market, offset, limit)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.OffsetResponse(c, "Comments retrieved successfully", comments, api.NewOffsetMeta(offset, limit, total))
}

// PostComment appends the caller's comment to a market
// @Summary      Post comment
// @Description  Appends the caller's comment to a market.
// @Tags         Social
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        request  body  CommentRequest  true  "Post comment Request"
// @Security     BearerAuth
// @Success      201  {object}  api.Response{data=models.Comment}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/markets/{market}/comments [post]
func (h *Handler) PostComment(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req CommentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	comment, err := h.service.PostComment(c.Request.Context(), caller, market, req.MetadataURI)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.CreatedResponse(c, "Comment posted", comment)
}

// VoteOnComment records the caller's vote
// @Summary      Vote on comment
// @Description  Records the caller's vote.
// @Tags         Social
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        comment  path int true "Comment ID"
// @Param        request  body  VoteRequest  true  "Vote on comment Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/markets/{market}/comments/{comment}/votes [post]
func (h *Handler) VoteOnComment(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	id, ok := commentID(c)
	if !ok {
		return
	}
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req VoteRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.VoteOnComment(c.Request.Context(), caller, market, id, req.Upvote); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Vote recorded", nil)
}

// HasVoted reports whether a voter has voted on a comment
// @Summary      Get vote status
// @Description  Reports whether a voter has voted on a comment.
// @Tags         Social
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        comment  path int true "Comment ID"
// @Param        voter    path string true "Voter address"
// @Success      200  {object}  api.Response{data=VoteStatusResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/markets/{market}/comments/{comment}/votes/{voter} [get]
func (h *Handler) HasVoted(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	id, ok := commentID(c)
	if !ok {
		return
	}
	voter, ok := api.ParseAddress(c, "voter")
	if !ok {
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Vote status retrieved", VoteStatusResponse{
		Voted: h.service.HasVoted(voter, market, id),
	})
}

// UpdatePredictionResult scores a prediction by hand
// @Summary      Score prediction (Owner)
// @Description  Scores a prediction by hand.
// @Tags         Social
// @Accept       json
// @Produce      json
// @Param        request  body  PredictionResultRequest  true  "Score prediction (Owner) Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/predictions/results [post]
func (h *Handler) UpdatePredictionResult(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req PredictionResultRequest
	if !api.BindJSON(c, &req) {
		return
	}

	v := validator.New()
	v.Check(validator.IsAddress(req.User), "user", "Invalid user address")
	v.Check(validator.IsAddress(req.Market), "market", "Invalid market address")
	v.Check(validator.IsAmount(req.Profit.Abs()), "profit", "Profit has too many decimals")
	if !v.Valid() {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	err := h.service.UpdatePredictionResult(c.Request.Context(), caller,
		common.HexToAddress(req.User), common.HexToAddress(req.Market), *req.WinningOutcome, req.Profit)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Prediction result updated", nil)
}

// TransferOwnership hands the ledger to a new owner
// @Summary      Transfer ledger ownership (Owner)
// @Description  Hands the ledger to a new owner.
// @Tags         Social
// @Accept       json
// @Produce      json
// @Param        request  body  OwnerRequest  true  "Transfer ledger ownership (Owner) Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/ownership [post]
func (h *Handler) TransferOwnership(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req OwnerRequest
	if !api.BindJSON(c, &req) {
		return
	}
	if !validator.IsAddress(req.Address) {
		api.BadRequestResponse(c, "Invalid address")
		return
	}

	if err := h.service.TransferOwnership(c.Request.Context(), caller, common.HexToAddress(req.Address)); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Ownership transferred", nil)
}

// RenounceOwnership leaves the ledger without an owner
// @Summary      Renounce ledger ownership (Owner)
// @Description  Leaves the ledger without an owner.
// @Tags         Social
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.Response
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/social/ownership/renounce [post]
func (h *Handler) RenounceOwnership(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	if err := h.service.RenounceOwnership(c.Request.Context(), caller); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Ownership renounced", nil)
}
