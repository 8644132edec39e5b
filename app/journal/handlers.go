package journal

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/app/api"
	"github.com/joefazee/categorical/internal/validator"
	"github.com/joefazee/categorical/models"
)

// Handler handles HTTP requests for the journal
type Handler struct {
	service Service
}

// NewHandler creates a new journal handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List returns journal entries matching the query filters
// @Summary      List journal entries
// @Description  Returns journal entries matching the query filters.
// @Tags         Journal
// @Produce      json
// @Param        source   query string false "Entry source" Enums(market, token)
// @Param        subject  query string false "Subject address"
// @Param        actor    query string false "Actor address"
// @Param        kind     query string false "Entry kind"
// @Param        offset   query int false "Window offset" default(0)
// @Param        limit    query int false "Window size"
// @Success      200  {object}  api.Response{data=[]models.JournalEntry}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      500  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/journal [get]
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	v := validator.New()
	v.Check(q.Source == "" || validator.In(models.JournalSource(q.Source), models.JournalSourceMarket, models.JournalSourceToken), "source", "Unknown source")
	v.Check(q.Subject == "" || validator.IsAddress(q.Subject), "subject", "Invalid subject address")
	v.Check(q.Actor == "" || validator.IsAddress(q.Actor), "actor", "Invalid actor address")
	if !v.Valid() {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	h.list(c, q.ToFilter())
}

// ListByMarket returns the entries recorded for one market
// @Summary      List market journal
// @Description  Returns the entries recorded for one market.
// @Tags         Journal
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        offset   query int false "Window offset" default(0)
// @Param        limit    query int false "Window size"
// @Success      200  {object}  api.Response{data=[]models.JournalEntry}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      500  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/journal/markets/{market} [get]
func (h *Handler) ListByMarket(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	filter, ok := pageFilter(c)
	if !ok {
		return
	}
	filter.Source = models.JournalSourceMarket
	filter.Subject = market.Hex()
	h.list(c, filter)
}

// ListByAccount returns the entries an account acted in
// @Summary      List account journal
// @Description  Returns the entries an account acted in.
// @Tags         Journal
// @Produce      json
// @Param        account  path string true "Account address"
// @Param        offset   query int false "Window offset" default(0)
// @Param        limit    query int false "Window size"
// @Success      200  {object}  api.Response{data=[]models.JournalEntry}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      500  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/journal/accounts/{account} [get]
func (h *Handler) ListByAccount(c *gin.Context) {
	account, ok := api.ParseAddress(c, "account")
	if !ok {
		return
	}
	filter, ok := pageFilter(c)
	if !ok {
		return
	}
	filter.Actor = account.Hex()
	h.list(c, filter)
}

func (h *Handler) list(c *gin.Context, filter Filter) {
	entries, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	// the service may have clamped the limit
	meta := api.NewOffsetMeta(filter.Offset, filter.Limit, int(total))
	meta.HasMore = filter.Offset+len(entries) < int(total)
	api.OffsetResponse(c, "Journal retrieved successfully", entries, meta)
}

func pageFilter(c *gin.Context) (Filter, bool) {
	var f Filter
	for key, dst := range map[string]*int{"offset": &f.Offset, "limit": &f.Limit} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			api.BadRequestResponse(c, "Invalid "+key)
			return Filter{}, false
		}
		*dst = v
	}
	return f, true
}
