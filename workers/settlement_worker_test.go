package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"typerbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettlement struct {
	calls   atomic.Int32
	block   chan struct{}
	err     error
	started chan struct{}
}

func (f *fakeSettlement) SettlePendingBets(ctx context.Context) (*models.SweepResult, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return &models.SweepResult{SweepID: "s", Checked: 1}, f.err
}

func (f *fakeSettlement) SettleBet(ctx context.Context, betID int64, outcome *models.MatchOutcome) (*models.Bet, bool, error) {
	return nil, false, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []*models.SweepResult
}

func (r *fakeRecorder) RecordSweep(result *models.SweepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func TestSettlementWorker_SweepRecordsResult(t *testing.T) {
	settlement := &fakeSettlement{err: errors.New("db down")}
	recorder := &fakeRecorder{}
	worker := NewSettlementWorker(settlement, time.Minute, recorder)

	result, err := worker.Sweep(context.Background())

	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, recorder.count())
}

func TestSettlementWorker_RejectsOverlappingSweep(t *testing.T) {
	settlement := &fakeSettlement{block: make(chan struct{}), started: make(chan struct{}, 1)}
	worker := NewSettlementWorker(settlement, time.Minute, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = worker.Sweep(context.Background())
	}()
	<-settlement.started

	_, err := worker.Sweep(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)

	close(settlement.block)
	<-done
	assert.Equal(t, int32(1), settlement.calls.Load())
}

func TestSettlementWorker_StartRunsOnInterval(t *testing.T) {
	settlement := &fakeSettlement{}
	recorder := &fakeRecorder{}
	worker := NewSettlementWorker(settlement, 50*time.Millisecond, recorder)

	stop, err := worker.Start(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return settlement.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	stop()
	assert.GreaterOrEqual(t, recorder.count(), 2)
}

func TestSettlementWorker_StartRejectsZeroInterval(t *testing.T) {
	_, err := NewSettlementWorker(&fakeSettlement{}, 0, nil).Start(context.Background())
	assert.Error(t, err)
}
