package journal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type journalResponse struct {
	Success bool                  `json:"success"`
	Data    []models.JournalEntry `json:"data"`
	Meta    struct {
		Offset  int  `json:"offset"`
		Limit   int  `json:"limit"`
		Total   int  `json:"total"`
		HasMore bool `json:"has_more"`
	} `json:"meta"`
}

type JournalHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func TestJournalHandler(t *testing.T) {
	suite.Run(t, new(JournalHandlerTestSuite))
}

func (s *JournalHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *JournalHandlerTestSuite) SetupTest() {
	repo := NewMemoryRepository()
	var batch []*models.JournalEntry
	for i := 0; i < 3; i++ {
		batch = append(batch, &models.JournalEntry{
			Source:  models.JournalSourceMarket,
			Kind:    "shares_bought",
			Subject: market.Hex(),
			Actor:   trader.Hex(),
			Shares:  decimal.NewFromInt(int64(i + 1)),
		})
	}
	batch = append(batch, &models.JournalEntry{
		Source:       models.JournalSourceToken,
		Kind:         "transfer",
		Subject:      owner.Hex(),
		Actor:        trader.Hex(),
		Counterparty: market.Hex(),
		Amount:       decimal.NewFromInt(5),
	})
	s.Require().NoError(repo.CreateBatch(context.Background(), batch))

	cfg := GetDefaultConfig()
	cfg.MaxPageSize = 2

	s.router = gin.New()
	Init(s.router.Group("/api/v1"), Dependencies{Service: NewService(repo, cfg)})
}

func (s *JournalHandlerTestSuite) get(path string) (*httptest.ResponseRecorder, journalResponse) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var body journalResponse
	if w.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func (s *JournalHandlerTestSuite) TestList() {
	w, body := s.get("/api/v1/journal?source=token")
	s.Equal(http.StatusOK, w.Code)
	s.True(body.Success)
	s.Require().Len(body.Data, 1)
	s.Equal(market.Hex(), body.Data[0].Counterparty)
	s.Equal(1, body.Meta.Total)
	s.False(body.Meta.HasMore)
}

func (s *JournalHandlerTestSuite) TestListClampsPage() {
	w, body := s.get("/api/v1/journal?limit=50")
	s.Equal(http.StatusOK, w.Code)
	s.Len(body.Data, 2)
	s.Equal(4, body.Meta.Total)
	s.True(body.Meta.HasMore)
}

func (s *JournalHandlerTestSuite) TestListLowercaseAddress() {
	lower := "0x" + common.Bytes2Hex(trader.Bytes())
	w, body := s.get("/api/v1/journal?actor=" + lower + "&kind=transfer")
	s.Equal(http.StatusOK, w.Code)
	s.Len(body.Data, 1)
}

func (s *JournalHandlerTestSuite) TestListValidation() {
	for _, path := range []string{
		"/api/v1/journal?source=oracle",
		"/api/v1/journal?subject=nope",
		"/api/v1/journal?actor=0x12",
	} {
		w, _ := s.get(path)
		s.Equal(http.StatusBadRequest, w.Code, path)
	}

	w, _ := s.get("/api/v1/journal?offset=-1")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *JournalHandlerTestSuite) TestListByMarket() {
	w, body := s.get("/api/v1/journal/markets/" + market.Hex() + "?offset=2")
	s.Equal(http.StatusOK, w.Code)
	s.Require().Len(body.Data, 1)
	s.Equal("1", body.Data[0].Shares.String())
	s.Equal(3, body.Meta.Total)
	s.False(body.Meta.HasMore)

	w, _ = s.get("/api/v1/journal/markets/not-an-address")
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.get("/api/v1/journal/markets/" + market.Hex() + "?limit=x")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *JournalHandlerTestSuite) TestListByAccount() {
	w, body := s.get("/api/v1/journal/accounts/" + trader.Hex() + "?limit=1")
	s.Equal(http.StatusOK, w.Code)
	s.Len(body.Data, 1)
	s.Equal(4, body.Meta.Total)
	s.True(body.Meta.HasMore)

	w, _ = s.get("/api/v1/journal/accounts/" + trader.Hex() + "?offset=-3")
	s.Equal(http.StatusBadRequest, w.Code)
}
