package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docfinder/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultClientName = "docfinder"
	readyPollMin      = 50 * time.Millisecond
	readyPollMax      = 2 * time.Second
)

// Config holds connection parameters for a Redis or Valkey server.
type Config struct {
	Addrs        []string
	Username     string
	Password     string
	DB           int
	ClientName   string        // CLIENT SETNAME, defaults to "docfinder"
	DialTimeout  time.Duration // 0 keeps the rueidis default
	WriteTimeout time.Duration // 0 keeps the rueidis default
}

// Store is the rueidis-backed KV store holding documents, summaries and usage counters.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the first reachable address. Blank addresses are ignored.
func NewStore(cfg Config) (*Store, error) {
	addrs := make([]string, 0, len(cfg.Addrs))
	for _, a := range cfg.Addrs {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("at least one database address is required")
	}

	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}

	opt := rueidis.ClientOption{
		InitAddress:      addrs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ClientName:       name,
		ConnWriteTimeout: cfg.WriteTimeout,
		// documents are re-read on every search; client-side tracking would
		// only add invalidation traffic
		DisableCache: true,
	}
	if cfg.DialTimeout > 0 {
		opt.Dialer.Timeout = cfg.DialTimeout
	}

	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", strings.Join(addrs, ","), err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings immediately, then with doubling intervals until the store
// answers or timeout expires. The returned error wraps ctx.Err() and carries
// the last ping failure.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lastErr := s.Ping(ctx)
	if lastErr == nil {
		return nil
	}

	wait := readyPollMin
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready after %s: %w (last error: %v)", timeout, ctx.Err(), lastErr)
		case <-timer.C:
			if lastErr = s.Ping(ctx); lastErr == nil {
				return nil
			}
			wait = min(wait*2, readyPollMax)
			timer.Reset(wait)
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
