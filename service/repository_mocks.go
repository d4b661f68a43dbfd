package service

import (
	"context"
	"time"

	"typerbot/events"
	"typerbot/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Debit(ctx context.Context, id string, amount int64) (int64, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) AddPoints(ctx context.Context, id string, delta int64) (*models.Account, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AddMessagePoints(ctx context.Context, id string, delta int64, awardedAt, cutoff time.Time) (*models.Account, error) {
	args := m.Called(ctx, id, delta, awardedAt, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateRank(ctx context.Context, id string, rank string, minPoints int64, maxPoints *int64) (bool, error) {
	args := m.Called(ctx, id, rank, minPoints, maxPoints)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetPending(ctx context.Context) ([]*models.Bet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetActiveByAccount(ctx context.Context, accountID string) ([]*models.Bet, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetStats(ctx context.Context, accountID string) (*models.BetStats, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetStats), args.Error(1)
}

func (m *MockBetRepository) Settle(ctx context.Context, id int64, state models.BetState, score string, settledAt time.Time) (*models.Bet, error) {
	args := m.Called(ctx, id, state, score, settledAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

// MockVoiceSessionRepository is a mock implementation of VoiceSessionRepository
type MockVoiceSessionRepository struct {
	mock.Mock
}

func (m *MockVoiceSessionRepository) Upsert(ctx context.Context, session *models.VoiceSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockVoiceSessionRepository) Get(ctx context.Context, accountID string) (*models.VoiceSession, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoiceSession), args.Error(1)
}

func (m *MockVoiceSessionRepository) Take(ctx context.Context, accountID string) (*models.VoiceSession, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoiceSession), args.Error(1)
}

// MockMatchOracle is a mock implementation of MatchOracle
type MockMatchOracle struct {
	mock.Mock
}

func (m *MockMatchOracle) Lookup(ctx context.Context, matchID string) (*models.MatchOutcome, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchOutcome), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// plain fields set with SetRepositories; only the transaction calls are mocked.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo      AccountRepository
	betRepo          BetRepository
	voiceSessionRepo VoiceSessionRepository
	eventPublisher   EventPublisher
}

func (m *MockUnitOfWork) SetRepositories(accountRepo AccountRepository, betRepo BetRepository, voiceSessionRepo VoiceSessionRepository, eventPublisher EventPublisher) {
	m.accountRepo = accountRepo
	m.betRepo = betRepo
	m.voiceSessionRepo = voiceSessionRepo
	m.eventPublisher = eventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) VoiceSessionRepository() VoiceSessionRepository {
	return m.voiceSessionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
