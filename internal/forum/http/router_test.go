package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/shelfside/bookforum/internal/forum/service"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/internal/forum/store/drivers/sqlite"
	"github.com/shelfside/bookforum/pkg/cryptox"
	"github.com/shelfside/bookforum/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "bookforum-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testEnv struct {
	server *httptest.Server
	store  store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys, err := jwtx.NewKeys()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	creds := &service.CredentialService{Issuer: "bookforum-test"}
	router := NewRouter(keys, "test", st, logger)
	router.RegisterService = &service.RegisterService{Store: st, Credentials: creds}
	router.LoginService = &service.LoginService{
		Store:        st,
		Credentials:  creds,
		Keys:         keys,
		Issuer:       "bookforum-test",
		ChallengeTTL: 5 * time.Minute,
		SessionTTL:   time.Hour,
	}
	router.InviteService = &service.InviteService{Store: st}
	router.PostService = &service.PostService{Store: st}
	router.CommunityService = &service.CommunityService{Store: st}
	router.FollowService = &service.FollowService{Store: st}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, store: st}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, buf)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

// registerAndLogin drives the full credential flow over the wire and
// returns a session token.
func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	resp, raw := e.do(t, http.MethodPost, "/v1/register", "", RegisterRequest{
		Role:     "reader",
		Username: username,
		Email:    username + "@example.com",
		Password: "a strong password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var reg RegisterResponse
	require.NoError(t, json.Unmarshal(raw, &reg))
	require.NotEmpty(t, reg.TOTPSecret)

	resp, raw = e.do(t, http.MethodPost, "/v1/login/password", "", PasswordLoginRequest{
		Username: username,
		Password: "a strong password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var challenge PasswordLoginResponse
	require.NoError(t, json.Unmarshal(raw, &challenge))

	code, err := totp.GenerateCode(reg.TOTPSecret, time.Now().UTC())
	require.NoError(t, err)

	resp, raw = e.do(t, http.MethodPost, "/v1/login/totp", "", TOTPLoginRequest{
		ChallengeToken: challenge.ChallengeToken,
		Code:           code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var session TOTPLoginResponse
	require.NoError(t, json.Unmarshal(raw, &session))
	require.Equal(t, "Bearer", session.TokenType)
	return session.SessionToken
}

func TestRegisterLoginPostFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	t.Run("posting requires a session", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodPost, "/v1/posts", "", CreatePostRequest{
			TargetKind: "topic",
			TargetID:   "announcements",
			BodyKind:   "text",
			Body:       "hello",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var postID string
	t.Run("reader posts text to a topic", func(t *testing.T) {
		resp, raw := env.do(t, http.MethodPost, "/v1/posts", token, CreatePostRequest{
			TargetKind: "topic",
			TargetID:   "announcements",
			BodyKind:   "text",
			Body:       "hello",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

		var post PostResponse
		require.NoError(t, json.Unmarshal(raw, &post))
		postID = post.ID
	})

	t.Run("reader media post is forbidden", func(t *testing.T) {
		resp, raw := env.do(t, http.MethodPost, "/v1/posts", token, CreatePostRequest{
			TargetKind: "topic",
			TargetID:   "announcements",
			BodyKind:   "image",
			Body:       "img://x.png",
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))

		var e struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(raw, &e))
		require.Equal(t, "forbidden", e.Error)
	})

	t.Run("topic posts are publicly listable", func(t *testing.T) {
		resp, raw := env.do(t, http.MethodGet, "/v1/topics/announcements/posts", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list PostListResponse
		require.NoError(t, json.Unmarshal(raw, &list))
		require.Len(t, list.Posts, 1)
		require.Equal(t, postID, list.Posts[0].ID)
	})

	t.Run("non-moderator delete is forbidden", func(t *testing.T) {
		resp, raw := env.do(t, http.MethodDelete, "/v1/posts/"+postID, token, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		var e struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(raw, &e))
		require.Equal(t, "forbidden", e.Error)
	})
}

func TestModeratorSurfaces(t *testing.T) {
	env := newTestEnv(t)

	token := env.registerAndLogin(t, "alice")

	t.Run("invite mint denied without the flag", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodPost, "/v1/invites/journalist", token, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	// Flip the flag out-of-band; it only takes effect on the next login.
	ctx := t.Context()
	account, err := env.store.Accounts().GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, env.store.Accounts().SetModerator(ctx, account.ID, true))

	t.Run("stale session still lacks the flag", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodPost, "/v1/invites/journalist", token, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("fresh session mints and redeems", func(t *testing.T) {
		fresh := env.relogin(t, "alice")

		resp, raw := env.do(t, http.MethodPost, "/v1/invites/journalist", fresh, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

		var mint JournalistInviteResponse
		require.NoError(t, json.Unmarshal(raw, &mint))
		require.NotEmpty(t, mint.Token)

		resp, raw = env.do(t, http.MethodPost, "/v1/register", "", RegisterRequest{
			Role:        "journalist",
			Username:    "scoop",
			Email:       "scoop@press.example",
			Password:    "a strong password",
			InviteToken: mint.Token,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

		// Single use.
		resp, _ = env.do(t, http.MethodPost, "/v1/register", "", RegisterRequest{
			Role:        "journalist",
			Username:    "scoop2",
			Email:       "scoop2@press.example",
			Password:    "a strong password",
			InviteToken: mint.Token,
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

// relogin runs only the login steps for an already-registered account. It
// reads the TOTP secret straight from the store, which the API never
// exposes after registration.
func (e *testEnv) relogin(t *testing.T, username string) string {
	t.Helper()
	ctx := t.Context()

	account, err := e.store.Accounts().GetAccountByUsername(ctx, username)
	require.NoError(t, err)

	resp, raw := e.do(t, http.MethodPost, "/v1/login/password", "", PasswordLoginRequest{
		Username: username,
		Password: "a strong password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var challenge PasswordLoginResponse
	require.NoError(t, json.Unmarshal(raw, &challenge))

	code, err := totp.GenerateCode(account.TOTPSecret, time.Now().UTC())
	require.NoError(t, err)

	resp, raw = e.do(t, http.MethodPost, "/v1/login/totp", "", TOTPLoginRequest{
		ChallengeToken: challenge.ChallengeToken,
		Code:           code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var session TOTPLoginResponse
	require.NoError(t, json.Unmarshal(raw, &session))
	return session.SessionToken
}
