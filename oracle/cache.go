package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"typerbot/models"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	keyOutcome  = "typer:outcome:%s"
	keyOdds     = "typer:odds:%s"
	keyFixtures = "typer:fixtures"

	// fixture lists and odds move, so they are held briefly
	volatileTTL = 5 * time.Minute
)

// NewRedis connects to redis and checks the connection
func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

// CachedProvider keeps final outcomes, odds and the fixture list in redis in
// front of a rate-limited provider. Unfinished outcomes and single fixtures
// always go to the provider. Redis failures fall through to the provider.
type CachedProvider struct {
	next       Provider
	rdb        *redis.Client
	outcomeTTL time.Duration
}

// NewCachedProvider wraps next with a redis cache
func NewCachedProvider(next Provider, rdb *redis.Client, outcomeTTL time.Duration) *CachedProvider {
	return &CachedProvider{
		next:       next,
		rdb:        rdb,
		outcomeTTL: outcomeTTL,
	}
}

func (p *CachedProvider) Lookup(ctx context.Context, matchID string) (*models.MatchOutcome, error) {
	key := fmt.Sprintf(keyOutcome, matchID)

	var cached models.MatchOutcome
	if p.load(ctx, key, &cached) {
		return &cached, nil
	}

	outcome, err := p.next.Lookup(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if outcome != nil && outcome.Finished {
		p.store(ctx, key, outcome, p.outcomeTTL)
	}
	return outcome, nil
}

func (p *CachedProvider) UpcomingFixtures(ctx context.Context) ([]models.Fixture, error) {
	var cached []models.Fixture
	if p.load(ctx, keyFixtures, &cached) {
		return cached, nil
	}

	fixtures, err := p.next.UpcomingFixtures(ctx)
	if err != nil {
		return nil, err
	}
	if len(fixtures) > 0 {
		p.store(ctx, keyFixtures, fixtures, volatileTTL)
	}
	return fixtures, nil
}

func (p *CachedProvider) Fixture(ctx context.Context, matchID string) (*models.Fixture, error) {
	return p.next.Fixture(ctx, matchID)
}

func (p *CachedProvider) Odds(ctx context.Context, matchID string) (*models.Odds, error) {
	key := fmt.Sprintf(keyOdds, matchID)

	var cached models.Odds
	if p.load(ctx, key, &cached) {
		return &cached, nil
	}

	odds, err := p.next.Odds(ctx, matchID)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, odds, volatileTTL)
	return odds, nil
}

func (p *CachedProvider) load(ctx context.Context, key string, out any) bool {
	raw, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).WithField("key", key).Warn("Failed to read oracle cache")
		}
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		log.WithError(err).WithField("key", key).Warn("Discarding unreadable oracle cache entry")
		return false
	}
	return true
}

func (p *CachedProvider) store(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to encode oracle cache entry")
		return
	}

	if err := p.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to write oracle cache")
	}
}
