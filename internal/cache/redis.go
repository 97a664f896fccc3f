package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/skyticket/config"
	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	ticketsTTL time.Duration
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ticketsTTL, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ticketsTTL: ticketsTTL,
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetTicket returns nil without error on a cache miss.
func (c *RedisCache) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	var ticket domain.Ticket
	found, err := c.getJSON(ctx, ticketKey(id), &ticket)
	if err != nil || !found {
		return nil, err
	}
	return &ticket, nil
}

func (c *RedisCache) SetTicket(ctx context.Context, ticket *domain.Ticket) error {
	return c.setJSON(ctx, ticketKey(ticket.ID), ticket, c.ticketsTTL)
}

// GetFavorites returns nil without error on a cache miss.
func (c *RedisCache) GetFavorites(ctx context.Context, limit int) ([]domain.Flight, error) {
	var flights []domain.Flight
	found, err := c.getJSON(ctx, favoritesKey(limit), &flights)
	if err != nil || !found {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFavorites(ctx context.Context, limit int, flights []domain.Flight) error {
	return c.setJSON(ctx, favoritesKey(limit), flights, c.flightsTTL)
}

// AcquirePaymentLock reports false when another confirmation for the booking holds the lock.
func (c *RedisCache) AcquirePaymentLock(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, paymentLockKey(bookingID), "locked", ttl).Result()
}

func (c *RedisCache) ReleasePaymentLock(ctx context.Context, bookingID int64) error {
	return c.client.Del(ctx, paymentLockKey(bookingID)).Err()
}

// SessionUser resolves a bearer token issued by the auth service into a user id.
func (c *RedisCache) SessionUser(ctx context.Context, token string) (int64, error) {
	raw, err := c.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrUnauthenticated
		}
		return 0, err
	}
	return parseSessionValue(raw)
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func parseSessionValue(raw string) (int64, error) {
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, domain.ErrUnauthenticated
	}
	return userID, nil
}

func ticketKey(id int64) string {
	return fmt.Sprintf("cache:ticket:%d", id)
}

func favoritesKey(limit int) string {
	return fmt.Sprintf("cache:flights:favorites:%d", limit)
}

func paymentLockKey(bookingID int64) string {
	return fmt.Sprintf("lock:booking:%d:payment", bookingID)
}

func sessionKey(token string) string {
	return "session:" + token
}
