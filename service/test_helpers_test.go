package service

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// serviceMocks wires one mock unit of work to every repository mock
type serviceMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	accounts  *MockAccountRepository
	bets      *MockBetRepository
	voice     *MockVoiceSessionRepository
	publisher *MockEventPublisher
}

func newServiceMocks() *serviceMocks {
	m := &serviceMocks{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		accounts:  new(MockAccountRepository),
		bets:      new(MockBetRepository),
		voice:     new(MockVoiceSessionRepository),
		publisher: new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.accounts, m.bets, m.voice, m.publisher)
	m.factory.On("Create").Return(m.uow)
	return m
}

// expectCommit sets up a transaction that is expected to commit
func (m *serviceMocks) expectCommit() {
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
}

// expectRollbackOnly sets up a transaction that must not commit
func (m *serviceMocks) expectRollbackOnly() {
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Rollback").Return(nil)
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.accounts.AssertExpectations(t)
	m.bets.AssertExpectations(t)
	m.voice.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}
