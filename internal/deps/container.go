package deps

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/joefazee/categorical/app"
	"github.com/joefazee/categorical/app/api"
	"github.com/joefazee/categorical/app/collateral"
	"github.com/joefazee/categorical/app/journal"
	"github.com/joefazee/categorical/app/lmsr"
	"github.com/joefazee/categorical/app/markets"
	"github.com/joefazee/categorical/app/social"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/internal/sanitizer"
	"github.com/joefazee/categorical/internal/security"
)

// Container holds the engine and the shared dependencies of its adapters
type Container struct {
	Config     *app.Config
	DB         *gorm.DB
	TokenMaker security.Maker
	Sanitizer  sanitizer.HTMLStripperer
	Logger     logger.Logger

	Token    *collateral.Token
	Pricing  lmsr.PricingEngine
	Factory  *markets.Factory
	Ledger   *social.Ledger
	Journal  journal.Repository
	Recorder *journal.Recorder
}

// NewContainer builds the engine from cfg. db may be nil unless the journal
// is backed by postgres.
func NewContainer(cfg *app.Config, db *gorm.DB, tokenMaker security.Maker, log logger.Logger) (*Container, error) {
	if log == nil {
		log = logger.NewNullLogger()
	}

	var repo journal.Repository
	switch cfg.Journal.Backend {
	case journal.PostgresBackend:
		if db == nil {
			return nil, fmt.Errorf("journal backend %q needs a database", cfg.Journal.Backend)
		}
		repo = journal.NewRepository(db)
	default:
		repo = journal.NewMemoryRepository()
	}
	recorder := journal.NewRecorder(&cfg.Journal, repo, log)

	strip := sanitizer.NewHTMLStripper()
	token := collateral.NewToken(&cfg.Collateral, log, collateral.WithListener(recorder))
	pricing := lmsr.NewPricingEngine(&cfg.LMSR)
	factory := markets.NewFactory(&cfg.Markets, token, pricing, log,
		markets.WithFactoryListener(recorder),
		markets.WithSocialLedger(social.LedgerAddress(cfg.Social.OwnerAddress())),
	)
	ledger := social.NewLedger(&cfg.Social, factory, strip, log)
	factory.Subscribe(ledger)

	return &Container{
		Config:     cfg,
		DB:         db,
		TokenMaker: tokenMaker,
		Sanitizer:  strip,
		Logger:     log,
		Token:      token,
		Pricing:    pricing,
		Factory:    factory,
		Ledger:     ledger,
		Journal:    repo,
		Recorder:   recorder,
	}, nil
}

// Auth resolves the caller from a bearer token
func (c *Container) Auth() gin.HandlerFunc {
	return api.AuthMiddleware(c.TokenMaker)
}

// Admin restricts a route to admin-scoped tokens. It runs after Auth.
func (c *Container) Admin() gin.HandlerFunc {
	return api.RequireScope(security.TokenScopeAdmin)
}
