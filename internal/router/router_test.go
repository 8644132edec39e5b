package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/app"
	_ "github.com/joefazee/categorical/docs"
	"github.com/joefazee/categorical/internal/deps"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/internal/security"
	"github.com/stretchr/testify/suite"
)

const symmetricKey = "abcdefghijklmnopqrstuvwxyzABCDEF"

var (
	owner  = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	oracle = common.HexToAddress("0x00000000000000000000000000000000000000d2")
	trader = common.HexToAddress("0x00000000000000000000000000000000000000d3")
)

type RouterTestSuite struct {
	suite.Suite
	container *deps.Container
	engine    *gin.Engine
	maker     security.Maker
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *RouterTestSuite) SetupTest() {
	cfg := app.DefaultConfig()
	cfg.Collateral.Owner = owner.Hex()
	cfg.Markets.Owner = owner.Hex()
	cfg.Markets.Oracle = oracle.Hex()

	maker, err := security.NewPasetoMaker(symmetricKey)
	s.Require().NoError(err)
	s.maker = maker

	s.container, err = deps.NewContainer(cfg, nil, maker, logger.NewNullLogger())
	s.Require().NoError(err)
	s.engine = New(s.container)
}

func (s *RouterTestSuite) token(account common.Address, scope string) string {
	token, _, err := s.maker.CreateToken(account, time.Minute, scope)
	s.Require().NoError(err)
	return token
}

func (s *RouterTestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/api/v1/healthz", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"markets":0`)
}

func (s *RouterTestSuite) TestCors() {
	w := s.do(http.MethodOptions, "/api/v1/markets", "", nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *RouterTestSuite) TestDocsDescribeEveryRoute() {
	w := s.do(http.MethodGet, "/swagger/doc.json", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var doc struct {
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &doc))

	param := regexp.MustCompile(`:(\w+)`)
	for _, route := range s.engine.Routes() {
		if !strings.HasPrefix(route.Path, "/api/v1/") || route.Path == "/api/v1/healthz" {
			continue
		}
		path := param.ReplaceAllString(route.Path, "{$1}")
		s.Contains(doc.Paths[path], strings.ToLower(route.Method), "%s %s is undocumented", route.Method, path)
	}

	w = s.do(http.MethodGet, "/docs/index.html", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "/swagger/doc.json")
}

func (s *RouterTestSuite) TestWritesNeedToken() {
	w := s.do(http.MethodPost, "/api/v1/token/mint", "", map[string]interface{}{"to": trader.Hex(), "amount": "1"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/factory/oracle", s.token(owner, security.TokenScopeTrade), map[string]interface{}{"address": trader.Hex()})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *RouterTestSuite) TestTradingFlow() {
	ownerToken := s.token(owner, security.TokenScopeTrade)
	traderToken := s.token(trader, security.TokenScopeTrade)

	w := s.do(http.MethodPost, "/api/v1/token/mint", ownerToken, map[string]interface{}{"to": trader.Hex(), "amount": "1000"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/token/approve", traderToken, map[string]interface{}{
		"spender": s.container.Factory.Address().Hex(),
		"amount":  "1000",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/markets", traderToken, map[string]interface{}{
		"metadata_uri":      "ipfs://election",
		"num_outcomes":      3,
		"resolution_time":   time.Now().Add(3 * time.Hour),
		"initial_liquidity": "100",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			Market common.Address `json:"market"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	market := created.Data.Market.Hex()

	w = s.do(http.MethodPost, "/api/v1/token/approve", traderToken, map[string]interface{}{"spender": market, "amount": "1000"})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/markets/"+market+"/buy", traderToken, map[string]interface{}{
		"outcome":    1,
		"min_shares": "0",
		"max_cost":   "10",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/social/markets/"+market+"/predictions", traderToken, map[string]interface{}{"outcome": 1, "confidence": 75})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/healthz", "", nil)
	s.Contains(w.Body.String(), `"markets":1`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Require().NoError(s.container.Recorder.Run(ctx))

	w = s.do(http.MethodGet, "/api/v1/journal/markets/"+market, "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"kind":"shares_bought"`)
	s.Contains(w.Body.String(), `"kind":"initialized"`)

	w = s.do(http.MethodGet, "/api/v1/journal?source=token&kind=mint", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"total":1`)
}
