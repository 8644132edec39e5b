package router

import (
	"github.com/gin-gonic/gin"

	"github.com/joefazee/categorical/app/api"
	"github.com/joefazee/categorical/app/collateral"
	"github.com/joefazee/categorical/app/doc"
	"github.com/joefazee/categorical/app/journal"
	"github.com/joefazee/categorical/app/markets"
	"github.com/joefazee/categorical/app/social"
	"github.com/joefazee/categorical/internal/deps"
)

// Modules lists every engine module in mount order
var Modules = []MountFunc{Health, Token, Markets, Social, Journal}

func Health(r *gin.RouterGroup, c *deps.Container) {
	r.GET("/healthz", api.HealthCheck(c.Config.Env, c.Factory.GetMarketCount))
}

func Token(r *gin.RouterGroup, c *deps.Container) {
	collateral.Init(r, collateral.Dependencies{
		Service: c.Token,
		Auth:    c.Auth(),
	})
}

func Markets(r *gin.RouterGroup, c *deps.Container) {
	markets.Init(r, markets.Dependencies{
		Service:   markets.NewService(c.Factory),
		Auth:      c.Auth(),
		Admin:     c.Admin(),
		Sanitizer: c.Sanitizer,
	})
}

func Social(r *gin.RouterGroup, c *deps.Container) {
	social.Init(r, social.Dependencies{
		Service: c.Ledger,
		Auth:    c.Auth(),
	})
}

func Journal(r *gin.RouterGroup, c *deps.Container) {
	journal.Init(r, journal.Dependencies{
		Service: journal.NewService(c.Journal, &c.Config.Journal),
	})
}

// New builds the gin engine with every module and the API docs mounted
func New(c *deps.Container) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), api.CorsMiddleware())
	NewMounter(c).API(engine).Mount(Modules...)
	doc.Init(engine, c.Config.Addr())
	return engine
}
