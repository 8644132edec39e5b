package collateral

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/app/api"
)

// Handler handles HTTP requests for the collateral token
type Handler struct {
	service Service
}

// NewHandler creates a new token handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func parseHex(c *gin.Context, field, raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		api.BadRequestResponse(c, "Invalid "+field+" address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

// GetToken returns the token metadata
// @Summary      Get token
// @Description  Returns the token metadata.
// @Tags         Token
// @Produce      json
// @Success      200  {object}  api.Response{data=TokenResponse}
// @Router       /api/v1/token [get]
func (h *Handler) GetToken(c *gin.Context) {
	api.SuccessResponse(c, http.StatusOK, "Token retrieved successfully", ToTokenResponse(h.service))
}

// GetBalance returns an account balance
// @Summary      Get balance
// @Description  Returns an account balance.
// @Tags         Token
// @Produce      json
// @Param        account  path string true "Account address"
// @Success      200  {object}  api.Response{data=BalanceResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/token/balances/{account} [get]
func (h *Handler) GetBalance(c *gin.Context) {
	account, ok := api.ParseAddress(c, "account")
	if !ok {
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Balance retrieved successfully", BalanceResponse{
		Account: account,
		Balance: h.service.BalanceOf(account),
	})
}

// GetAllowance returns an owner/spender allowance
// @Summary      Get allowance
// @Description  Returns an owner/spender allowance.
// @Tags         Token
// @Produce      json
// @Param        owner    path string true "Owner address"
// @Param        spender  path string true "Spender address"
// @Success      200  {object}  api.Response{data=AllowanceResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/token/allowances/{owner}/{spender} [get]
func (h *Handler) GetAllowance(c *gin.Context) {
	owner, ok := api.ParseAddress(c, "owner")
	if !ok {
		return
	}
	spender, ok := api.ParseAddress(c, "spender")
	if !ok {
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Allowance retrieved successfully", AllowanceResponse{
		Owner:     owner,
		Spender:   spender,
		Allowance: h.service.Allowance(owner, spender),
	})
}

// Transfer moves the caller's tokens
// @Summary      Transfer tokens
// @Description  Moves the caller's tokens.
// @Tags         Token
// @Accept       json
// @Produce      json
// @Param        request  body  TransferRequest  true  "Transfer tokens Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=BalanceResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/token/transfer [post]
func (h *Handler) Transfer(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req TransferRequest
	if !api.BindJSON(c, &req) {
		return
	}
	to, ok := parseHex(c, "to", req.To)
	if !ok {
		return
	}

	if err := h.service.Transfer(c.Request.Context(), caller, to, req.Amount); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Transfer completed", BalanceResponse{Account: caller, Balance: h.service.BalanceOf(caller)})
}

// TransferFrom moves tokens against the caller's allowance
// @Summary      Transfer tokens from an account
// @Description  Moves tokens against the caller's allowance.
// @Tags         Token
// @Accept       json
// @Produce      json
// @Param        request  body  TransferFromRequest  true  "Transfer tokens from an account Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/token/transfer-from [post]
func (h *Handler) TransferFrom(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req TransferFromRequest
	if !api.BindJSON(c, &req) {
		return
	}
	from, ok := parseHex(c, "from", req.From)
	if !ok {
		return
	}
	to, ok := parseHex(c, "to", req.To)
	if !ok {
		return
	}

	if err := h.service.TransferFrom(c.Request.Context(), caller, from, to, req.Amount); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Transfer completed", nil)
}

// Approve sets the caller's allowance for a spender
// @Summary      Approve spender
// @Description  Sets the caller's allowance for a spender.
// @Tags         Token
// @Accept       json
// @Produce      json
// @Param        request  body  ApproveRequest  true  "Approve spender Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=AllowanceResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/token/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req ApproveRequest
	if !api.BindJSON(c, &req) {
		return
	}
	spender, ok := parseHex(c, "spender", req.Spender)
	if !ok {
		return
	}

	if err := h.service.Approve(c.Request.Context(), caller, spender, req.Amount); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Allowance updated", AllowanceResponse{
		Owner:     caller,
		Spender:   spender,
		Allowance: h.service.Allowance(caller, spender),
	})
}

// Mint creates tokens; owner only
// @Summary      Mint tokens (Owner)
// @Description  Creates tokens; owner only.
// @Tags         Token
// @Accept       json
// @Produce      json
// @Param        request  body  MintRequest  true  "Mint tokens (Owner) Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=BalanceResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/token/mint [post]
func (h *Handler) Mint(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req MintRequest
	if !api.BindJSON(c, &req) {
		return
	}
	to, ok := parseHex(c, "to", req.To)
	if !ok {
		return
	}

	if err := h.service.Mint(c.Request.Context(), caller, to, req.Amount); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Tokens minted", BalanceResponse{Account: to, Balance: h.service.BalanceOf(to)})
}

// Burn destroys the caller's tokens
// @Summary      Burn tokens
// @Description  Destroys the caller's tokens.
// @Tags         Token
// @Accept       json
// @Produce      json
// @Param        request  body  BurnRequest  true  "Burn tokens Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=BalanceResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/token/burn [post]
func (h *Handler) Burn(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req BurnRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.Burn(c.Request.Context(), caller, req.Amount); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Tokens burned", BalanceResponse{Account: caller, Balance: h.service.BalanceOf(caller)})
}

// TransferOwnership hands the minting role to another account
// @Summary      Transfer token ownership (Owner)
// @Description  Hands the minting role to another account.
// @Tags         Token
// @Accept       json
// @Produce      json
// @Param        request  body  OwnershipRequest  true  "Transfer token ownership (Owner) Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=TokenResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/token/ownership [post]
func (h *Handler) TransferOwnership(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req OwnershipRequest
	if !api.BindJSON(c, &req) {
		return
	}
	newOwner, ok := parseHex(c, "new_owner", req.NewOwner)
	if !ok {
		return
	}

	if err := h.service.TransferOwnership(c.Request.Context(), caller, newOwner); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Ownership transferred", ToTokenResponse(h.service))
}

// RenounceOwnership removes the token owner
// @Summary      Renounce token ownership (Owner)
// @Description  Removes the token owner.
// @Tags         Token
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=TokenResponse}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/token/ownership/renounce [post]
func (h *Handler) RenounceOwnership(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}

	if err := h.service.RenounceOwnership(c.Request.Context(), caller); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Ownership renounced", ToTokenResponse(h.service))
}
