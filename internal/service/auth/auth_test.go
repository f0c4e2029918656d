package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bookly-service/internal/domain/book"
	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/jwt"

	"github.com/google/uuid"
)

func TestSignupCreatesUnverifiedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := &user.SignupRequest{
		Username: "dave", Email: "Dave@Example.com", Password: "secret",
		FirstName: "Dave", LastName: "Jones",
	}
	u, err := env.svc.Signup(ctx, req)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Role != user.RoleUser || u.IsVerified {
		t.Errorf("role=%q verified=%v, want user/false", u.Role, u.IsVerified)
	}
	if u.Email != "dave@example.com" {
		t.Errorf("email = %q, want normalised", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret" {
		t.Error("password was not hashed")
	}

	if _, err := env.svc.Signup(ctx, req); !errors.Is(err, xerrors.ErrUserAlreadyExists) {
		t.Fatalf("duplicate signup err = %v, want ErrUserAlreadyExists", err)
	}
}

func TestLoginIssuesAccessAndRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.users.add(t, "erin@example.com", "hunter2", "admin", true)

	resp, err := env.svc.Login(ctx, &user.LoginRequest{Email: "erin@example.com", Password: "hunter2", IPAddress: "1.2.3.4"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.UID != u.UID.String() || resp.User.Email != u.Email {
		t.Errorf("user info = %+v", resp.User)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d", resp.ExpiresIn)
	}

	access, err := env.guard.Access(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("access token rejected: %v", err)
	}
	if access.User.Role != "admin" {
		t.Errorf("access role = %q, want admin", access.User.Role)
	}

	refresh, err := env.guard.Refresh(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("refresh token rejected: %v", err)
	}
	if refresh.User.Role != "" {
		t.Errorf("refresh token carries role %q", refresh.User.Role)
	}
	if access.ID == refresh.ID {
		t.Error("access and refresh tokens share a jti")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.users.add(t, "frank@example.com", "right", "user", true)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "frank@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "right"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Login(ctx, &user.LoginRequest{Email: tt.email, Password: tt.password, IPAddress: "9.9.9.9"})
			if !errors.Is(err, xerrors.ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.users.add(t, "gina@example.com", "right", "user", true)

	req := &user.LoginRequest{Email: "gina@example.com", Password: "wrong", IPAddress: "5.5.5.5"}
	for i := 0; i < 5; i++ {
		if _, err := env.svc.Login(ctx, req); !errors.Is(err, xerrors.ErrInvalidCredentials) {
			t.Fatalf("attempt %d err = %v", i+1, err)
		}
	}

	req.Password = "right"
	if _, err := env.svc.Login(ctx, req); !errors.Is(err, xerrors.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestRefreshAccessTokenKeepsSubject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	subject := jwt.UserClaims{Email: "hank@example.com", UserUID: "0e4f2b55-7a9c-4d0e-9f6b-2c1d3e4f5a6b"}
	raw, _, err := env.codec.IssueRefresh(subject)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	claims, err := env.guard.Refresh(ctx, raw)
	if err != nil {
		t.Fatalf("Refresh guard: %v", err)
	}

	resp, err := env.svc.RefreshAccessToken(ctx, claims)
	if err != nil {
		t.Fatalf("RefreshAccessToken: %v", err)
	}

	access, err := env.guard.Access(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("new access token rejected: %v", err)
	}
	if access.User != subject {
		t.Errorf("user = %+v, want %+v", access.User, subject)
	}
	if access.ID == claims.ID {
		t.Error("new access token reused the refresh jti")
	}
}

func TestRefreshAccessTokenRejectsExpiredClaims(t *testing.T) {
	env := newTestEnv(t)
	stale := &jwt.Claims{Refresh: true}
	stale.ID = "stale"
	stale.ExpiresAt = nil

	if _, err := env.svc.RefreshAccessToken(context.Background(), stale); !errors.Is(err, xerrors.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	raw, _ := issue(t, env.codec, jwt.KindAccess)
	claims, err := env.guard.Access(ctx, raw)
	if err != nil {
		t.Fatalf("Access: %v", err)
	}

	if err := env.svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := env.guard.Access(ctx, raw); !errors.Is(err, xerrors.ErrInvalidToken) {
		t.Fatalf("token still accepted after logout: %v", err)
	}

	if ttl := env.mr.TTL("blocklist:" + claims.ID); ttl < env.codec.AccessTTL() {
		t.Errorf("blocklist ttl = %v, want at least %v", ttl, env.codec.AccessTTL())
	}

	if len(env.notifier.calls) != 1 {
		t.Fatalf("notifier calls = %d, want 1", len(env.notifier.calls))
	}
	if call := env.notifier.calls[0]; call.userUID != bob.UserUID || call.jti != claims.ID {
		t.Errorf("notifier call = %+v", call)
	}

	// a second logout with the same claims is harmless
	if err := env.svc.Logout(ctx, claims); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}

func TestLogoutSharedTokenUnderConcurrentUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	shared, _ := issue(t, env.codec, jwt.KindAccess)
	other, otherClaims := issue(t, env.codec, jwt.KindAccess)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.guard.Access(ctx, shared); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Access: %v", err)
	}

	claims, err := env.guard.Access(ctx, shared)
	if err != nil {
		t.Fatalf("Access: %v", err)
	}
	if claims.ID == otherClaims.ID {
		t.Fatal("two sessions share a jti")
	}

	// requests racing the logout either pass or see the revocation
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.guard.Access(ctx, shared)
			results <- err
		}()
	}
	if err := env.svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	wg.Wait()
	close(results)
	for err := range results {
		if err != nil && !errors.Is(err, xerrors.ErrInvalidToken) {
			t.Fatalf("racing request err = %v", err)
		}
	}

	if _, err := env.guard.Access(ctx, shared); !errors.Is(err, xerrors.ErrInvalidToken) {
		t.Fatalf("logged out token err = %v, want ErrInvalidToken", err)
	}
	if _, err := env.guard.Access(ctx, other); err != nil {
		t.Fatalf("other session rejected after logout: %v", err)
	}

	remaining := claims.RemainingLifetime(env.codec.Now())
	if ttl := env.mr.TTL("blocklist:" + claims.ID); ttl < remaining {
		t.Errorf("blocklist ttl = %v, token still valid for %v", ttl, remaining)
	}
}

func TestLogoutFailsClosed(t *testing.T) {
	env := newTestEnv(t)
	_, claims := issue(t, env.codec, jwt.KindAccess)
	env.mr.SetError("ERR down")

	if err := env.svc.Logout(context.Background(), claims); !errors.Is(err, xerrors.ErrAuthInfrastructure) {
		t.Fatalf("err = %v, want ErrAuthInfrastructure", err)
	}
	if len(env.notifier.calls) != 0 {
		t.Error("notifier called although revocation failed")
	}
}

func TestMeIncludesBooks(t *testing.T) {
	env := newTestEnv(t)
	u := env.users.add(t, "ivy@example.com", "pw", "user", true)
	env.books.books[u.UID] = []book.Book{{Title: "Dune"}, {Title: "Emma"}}

	got, err := env.svc.Me(context.Background(), u)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if got.Email != u.Email || len(got.Books) != 2 {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestAdminOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.users.add(t, "jack@example.com", "pw", "user", false)

	if _, err := env.svc.SetRole(ctx, u.UID, "root"); !errors.Is(err, xerrors.ErrBadRequest) {
		t.Fatalf("SetRole(root) err = %v, want ErrBadRequest", err)
	}

	updated, err := env.svc.SetRole(ctx, u.UID, user.RoleAdmin)
	if err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if updated.Role != user.RoleAdmin {
		t.Errorf("role = %q", updated.Role)
	}
	if err := AdminOnly.Authorize(updated); !errors.Is(err, xerrors.ErrAccountNotVerified) {
		t.Errorf("unverified admin err = %v", err)
	}

	updated, err = env.svc.SetVerified(ctx, u.UID, true)
	if err != nil {
		t.Fatalf("SetVerified: %v", err)
	}
	if err := AdminOnly.Authorize(updated); err != nil {
		t.Errorf("verified admin rejected: %v", err)
	}

	want := []accountChange{
		{u.UID.String(), user.RoleAdmin, false},
		{u.UID.String(), user.RoleAdmin, true},
	}
	if len(env.notifier.changes) != len(want) {
		t.Fatalf("account changes = %+v", env.notifier.changes)
	}
	for i, got := range env.notifier.changes {
		if got != want[i] {
			t.Errorf("change %d = %+v, want %+v", i, got, want[i])
		}
	}

	if _, err := env.svc.SetVerified(ctx, uuid.New(), true); !errors.Is(err, xerrors.ErrUserNotFound) {
		t.Fatalf("unknown user err = %v, want ErrUserNotFound", err)
	}
	if len(env.notifier.changes) != len(want) {
		t.Error("notified about an account that does not exist")
	}

	list, err := env.svc.ListUsers(ctx, &user.UserListFilters{Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if list.Total != 1 || list.TotalPages != 1 {
		t.Errorf("list = %+v", list)
	}
}

func TestEnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.svc.EnsureAdmin(ctx, "Root@Example.com", "pw"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	admin, err := env.users.FindByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != user.RoleAdmin || !admin.IsVerified {
		t.Fatalf("admin = %+v", admin)
	}

	// promotes an existing account and stays idempotent
	existing := env.users.add(t, "kim@example.com", "pw", "user", false)
	for i := 0; i < 2; i++ {
		if err := env.svc.EnsureAdmin(ctx, "kim@example.com", "pw"); err != nil {
			t.Fatalf("EnsureAdmin existing: %v", err)
		}
	}
	got, _ := env.users.FindByUID(ctx, existing.UID)
	if got.Role != user.RoleAdmin || !got.IsVerified {
		t.Fatalf("existing account not promoted: %+v", got)
	}

}
