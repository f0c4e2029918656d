package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"bookly-service/internal/domain/book"
	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/jwt"
	"bookly-service/internal/pkg/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memUserStore struct {
	mu      sync.Mutex
	byEmail map[string]*user.User
	findErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byEmail: make(map[string]*user.User)}
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) FindByUID(_ context.Context, uid uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.UID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (m *memUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (m *memUserStore) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return xerrors.ErrUserAlreadyExists
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUserStore) update(uid uuid.UUID, fn func(*user.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.UID == uid {
			fn(u)
			return nil
		}
	}
	return xerrors.ErrUserNotFound
}

func (m *memUserStore) UpdateRole(_ context.Context, uid uuid.UUID, role string) error {
	return m.update(uid, func(u *user.User) { u.Role = role })
}

func (m *memUserStore) UpdateVerified(_ context.Context, uid uuid.UUID, verified bool) error {
	return m.update(uid, func(u *user.User) { u.IsVerified = verified })
}

func (m *memUserStore) List(_ context.Context, filters *user.UserListFilters) ([]user.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []user.User
	for _, u := range m.byEmail {
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		out = append(out, *u)
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	return out, int64(len(out)), nil
}

// add stores a user with a known password.
func (m *memUserStore) add(t *testing.T, email, password, role string, verified bool) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &user.User{
		UID:          uuid.New(),
		Username:     strings.Split(email, "@")[0],
		Email:        email,
		Role:         role,
		IsVerified:   verified,
		PasswordHash: string(hash),
	}
	if err := m.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	return u
}

type memBooks struct {
	books map[uuid.UUID][]book.Book
}

func (m *memBooks) ListByUser(_ context.Context, uid uuid.UUID) ([]book.Book, error) {
	return append([]book.Book{}, m.books[uid]...), nil
}

type forceLogout struct {
	userUID, jti, reason string
}

type accountChange struct {
	userUID, role string
	verified      bool
}

type recordingNotifier struct {
	mu      sync.Mutex
	calls   []forceLogout
	changes []accountChange
}

func (n *recordingNotifier) ForceLogout(userUID, jti, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, forceLogout{userUID, jti, reason})
}

func (n *recordingNotifier) AccountChanged(userUID, role string, verified bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, accountChange{userUID, role, verified})
}

type testEnv struct {
	mr       *miniredis.Miniredis
	codec    *jwt.Codec
	list     *session.Blocklist
	guard    *Guard
	users    *memUserStore
	books    *memBooks
	notifier *recordingNotifier
	svc      *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	codec, err := jwt.LoadAndBuild(jwt.Config{
		Secret:     "auth-test-secret",
		Algorithm:  "HS256",
		Issuer:     "bookly",
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	logger := zap.NewNop()
	list := session.NewBlocklist(rdb, codec.AccessTTL())
	users := newMemUserStore()
	books := &memBooks{books: make(map[uuid.UUID][]book.Book)}
	notifier := &recordingNotifier{}

	return &testEnv{
		mr:       mr,
		codec:    codec,
		list:     list,
		guard:    NewGuard(codec, list, logger),
		users:    users,
		books:    books,
		notifier: notifier,
		svc: NewAuthService(
			users, books, codec, list, session.NewRateLimiter(rdb), notifier, bcrypt.MinCost, logger,
		),
	}
}
