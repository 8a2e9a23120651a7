package e2e

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/authservice/internal/handlers"
	"github.com/nkiryanov/authservice/internal/logger"
	"github.com/nkiryanov/authservice/internal/repository/postgres"
	"github.com/nkiryanov/authservice/internal/repository/redis"
	"github.com/nkiryanov/authservice/internal/service/auth"
	"github.com/nkiryanov/authservice/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/authservice/internal/service/mailer"
	"github.com/nkiryanov/authservice/internal/service/user"
	"github.com/nkiryanov/authservice/internal/testutil"
)

const (
	AdminSecret = "e2e-admin-secret"
	RefreshTTL  = time.Hour
	AccessTTL   = time.Minute
)

// Clock shared by server and test: test moves time forward to expire tokens
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Mailer keeps sent messages in memory
type Mailbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *Mailbox) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *Mailbox) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

type Env struct {
	URL     string
	Clock   *Clock
	Mailbox *Mailbox
	Redis   testutil.RedisServer
}

// Create db transaction and run server with that connection (one connection cause one transaction)
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(env Env)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		clock := &Clock{now: time.Now()}
		mailbox := &Mailbox{}
		r := testutil.StartRedis(t)
		l := logger.NewNoOpLogger()

		tokens, err := tokenmanager.New(tokenmanager.Config{
			SecretKey:   "e2e-secret-key",
			AdminSecret: AdminSecret,
			RefreshTTL:  RefreshTTL,
			AccessTTL:   AccessTTL,
			Now:         clock.Now,
		})
		require.NoError(t, err, "token manager should be created without errors")

		storage := postgres.NewStorage(tx)
		hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}

		as, err := auth.NewService(auth.Config{Hasher: hasher}, tokens, storage, l)
		require.NoError(t, err, "auth service starting error")
		us, err := user.NewService(user.Config{Hasher: hasher}, tokens, storage, redis.NewCodeStore(r.Client), mailbox, l)
		require.NoError(t, err, "user service starting error")

		checks := map[string]handlers.HealthCheck{
			"redis": func(ctx context.Context) error { return r.Client.Ping(ctx).Err() },
		}

		srv := httptest.NewServer(handlers.NewRouter(as, us, checks, l))
		defer srv.Close()

		fn(Env{URL: srv.URL, Clock: clock, Mailbox: mailbox, Redis: r})
	})
}
