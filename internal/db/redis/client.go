// Package redis implements db.Store on rueidis. It serves both Valkey with
// valkey-search and Redis 8 with the query engine.
package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecmcp/internal/db"
)

var _ db.Store = (*Store)(nil)

// clientName is sent with CLIENT SETNAME so operators can spot vecmcp connections.
const clientName = "vecmcp"

// Config describes one deployment. Addrs holds seed nodes; a cluster is detected automatically.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

// Store is a rueidis-backed db.Store.
type Store struct {
	client rueidis.Client
}

// NewStore dials cfg.Addrs.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		ClientName:   clientName,
		DisableCache: true,
		// FT.SEARCH replies are parsed as RESP2 arrays.
		AlwaysRESP2: true,
	})
	if err != nil {
		return nil, db.Wrap("CONNECT", strings.Join(cfg.Addrs, ","), err)
	}
	return &Store{client: client}, nil
}

// Ping round-trips a PING.
func (s *Store) Ping(ctx context.Context) error {
	return db.Wrap("PING", "", s.do(ctx, s.b().Ping().Build()).Error())
}

// Close releases every pooled connection.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the server answers, backing off from 50ms up to 1s.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delay := 50 * time.Millisecond
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), err)
		case <-time.After(delay):
		}
		delay = min(delay*2, time.Second)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// serverSays reports whether err is a server reply mentioning any of phrases, ignoring case.
func serverSays(err error, phrases ...string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	msg := strings.ToLower(re.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
