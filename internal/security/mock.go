package security

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

// MockMaker is a Maker for handler and middleware tests
type MockMaker struct {
	mock.Mock
}

func (m *MockMaker) CreateToken(subject common.Address, duration time.Duration, scope string) (string, *Payload, error) {
	args := m.Called(subject, duration, scope)
	payload, _ := args.Get(1).(*Payload)
	return args.String(0), payload, args.Error(2)
}

func (m *MockMaker) VerifyToken(token string) (*Payload, error) {
	args := m.Called(token)
	payload, _ := args.Get(0).(*Payload)
	return payload, args.Error(1)
}
