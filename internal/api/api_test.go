package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bilgisen/khabar/internal/auth"
	"github.com/bilgisen/khabar/internal/cache"
	"github.com/bilgisen/khabar/internal/config"
	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/media"
	"github.com/bilgisen/khabar/internal/models"
	"github.com/bilgisen/khabar/internal/storage"
)

const testPassword = "correct horse"

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Desk</title>
  <item>
    <title>Budget session begins</title>
    <link>https://desk.example.com/budget</link>
    <guid>urn:budget</guid>
    <description>Parliament convenes.</description>
    <author>desk@example.com (Desk Reporter)</author>
  </item>
  <item>
    <title>Cricket: India win series</title>
    <link>https://desk.example.com/cricket</link>
    <guid>urn:cricket</guid>
    <description>A famous win.</description>
  </item>
</channel>
</rss>`

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testEnv struct {
	app      *fiber.App
	store    *storage.Store
	tokens   *auth.TokenIssuer
	accounts map[models.Role]*models.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.Open(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })

	tokens := auth.NewTokenIssuer("api-test-secret-long-enough-1234", time.Hour)
	authSvc, err := auth.NewService(store, auth.NewHasher(bcrypt.MinCost), tokens)
	require.NoError(t, err)

	uploadDir := filepath.Join(dir, "uploads")
	local, err := media.NewLocalStore(uploadDir, "/uploads")
	require.NoError(t, err)

	syncer := feed.NewSyncer(store,
		feed.NewFetcher(feed.FetcherConfig{Timeout: 2 * time.Second}),
		cache.NewMemorySet(),
		feed.SyncerConfig{Concurrency: 2},
	)

	cfg := &config.Config{
		Env:          "test",
		HTTPTimeout:  5 * time.Second,
		CORSOrigins:  "*",
		MaxImageSize: 1 << 20,
		MaxVideoSize: 2 << 20,
	}
	app := NewApp(Deps{
		Config:    cfg,
		Store:     store,
		Auth:      authSvc,
		Syncer:    syncer,
		Uploader:  media.NewUploader(local, cfg.MaxImageSize, cfg.MaxVideoSize),
		UploadDir: uploadDir,
	})

	env := &testEnv{app: app, store: store, tokens: tokens, accounts: map[models.Role]*models.Account{}}
	for _, role := range models.AllRoles {
		hash, err := authSvc.HashPassword(context.Background(), testPassword)
		require.NoError(t, err)
		acc := &models.Account{
			Username:     string(role),
			Email:        string(role) + "@example.com",
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
		}
		require.NoError(t, store.CreateAccount(context.Background(), acc))
		env.accounts[role] = acc
	}
	return env
}

func (e *testEnv) token(t *testing.T, role models.Role) string {
	t.Helper()
	tok, _, err := e.tokens.Issue(e.accounts[role])
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func (e *testEnv) createArticle(t *testing.T, title string, status models.ArticleStatus) *models.Article {
	t.Helper()
	a := &models.Article{Title: title, Content: title + " body", Status: status}
	require.NoError(t, e.store.CreateArticle(context.Background(), a, "", nil))
	return a
}

func TestRoutesEnforcePermissionTable(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandlers(Deps{Auth: nil})

	for _, r := range h.adminRoutes() {
		// Unknown ids keep allowed calls from mutating the fixtures.
		path := "/api/admin" + strings.ReplaceAll(r.path, ":id", "999999")
		allowed := auth.RolesFor(r.op)

		for _, role := range models.AllRoles {
			t.Run(fmt.Sprintf("%s %s as %s", r.method, r.path, role), func(t *testing.T) {
				resp, body := env.do(t, r.method, path, env.token(t, role), nil)
				if auth.Allowed(r.op, role) {
					assert.NotContains(t, []int{fiber.StatusUnauthorized, fiber.StatusForbidden}, resp.StatusCode, string(body))
				} else {
					assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "allowed roles: %v", allowed)
				}
			})
		}
	}
}

func TestAdminRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, fiber.MethodGet, "/api/admin/articles", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, fiber.MethodGet, "/api/admin/articles", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDeactivatedAccountLosesAccess(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleEditor)

	_, err := env.store.UpdateAccount(context.Background(), env.accounts[models.RoleEditor].ID, map[string]any{"is_active": false})
	require.NoError(t, err)

	resp, _ := env.do(t, fiber.MethodGet, "/api/admin/articles", tok, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, fiber.MethodPost, "/api/admin/login", "", fiber.Map{
		"email":    " Editor@Example.com",
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	res := decode[auth.LoginResult](t, body)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleEditor, res.User.Role)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "admin_token" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(fiber.MethodGet, "/api/admin/profile", nil)
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	profile, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, profile.StatusCode)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	env := newTestEnv(t)

	wrong, wrongBody := env.do(t, fiber.MethodPost, "/api/admin/login", "", fiber.Map{
		"email": "editor@example.com", "password": "nope",
	})
	unknown, unknownBody := env.do(t, fiber.MethodPost, "/api/admin/login", "", fiber.Map{
		"email": "ghost@example.com", "password": "nope",
	})
	assert.Equal(t, fiber.StatusUnauthorized, wrong.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, unknown.StatusCode)
	assert.JSONEq(t, string(wrongBody), string(unknownBody))
}

func TestProfilePasswordChange(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleViewer)

	resp, body := env.do(t, fiber.MethodPut, "/api/admin/profile", tok, fiber.Map{
		"currentPassword": "wrong", "newPassword": "a-new-password",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = env.do(t, fiber.MethodPut, "/api/admin/profile", tok, fiber.Map{
		"newPassword": "a-new-password",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, string(body))

	resp, body = env.do(t, fiber.MethodPut, "/api/admin/profile", tok, fiber.Map{
		"currentPassword": testPassword, "newPassword": "a-new-password",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	resp, _ = env.do(t, fiber.MethodPost, "/api/admin/login", "", fiber.Map{
		"email": "viewer@example.com", "password": "a-new-password",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOverlongPasswordsAreValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleManager)

	// 100 ASCII characters fail the character limit.
	resp, body := env.do(t, fiber.MethodPut, "/api/admin/profile", tok, fiber.Map{
		"currentPassword": testPassword, "newPassword": strings.Repeat("a", 100),
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, string(body))

	// 30 Devanagari characters pass the character limit but are 90 bytes.
	hindi := strings.Repeat("क", 30)
	resp, body = env.do(t, fiber.MethodPut, "/api/admin/profile", tok, fiber.Map{
		"currentPassword": testPassword, "newPassword": hindi,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "72 bytes")

	resp, body = env.do(t, fiber.MethodPost, "/api/admin/users", tok, fiber.Map{
		"username": "hindi", "email": "hindi@example.com", "password": hindi, "role": "viewer",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "72 bytes")

	editor := env.accounts[models.RoleEditor]
	resp, body = env.do(t, fiber.MethodPut, fmt.Sprintf("/api/admin/users/%d", editor.ID), tok, fiber.Map{
		"password": hindi,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(body))

	// The old password still works after the rejected change.
	resp, _ = env.do(t, fiber.MethodPost, "/api/admin/login", "", fiber.Map{
		"email": "manager@example.com", "password": testPassword,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestArticleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleEditor)

	resp, body := env.do(t, fiber.MethodPost, "/api/admin/articles", tok, fiber.Map{
		"title":   "Election results",
		"titleHi": "चुनाव परिणाम",
		"content": "Counting is under way.",
		"tags":    []string{"politics"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	created := decode[models.Article](t, body)
	assert.Equal(t, models.StatusDraft, created.Status)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, "editor", created.AuthorName)
	assert.Equal(t, "Uncategorized", created.CategoryTitle)

	path := fmt.Sprintf("/api/admin/articles/%d", created.ID)
	resp, body = env.do(t, fiber.MethodPut, path, tok, fiber.Map{"content": "Counting is complete.", "changeNote": "final tally"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 2, decode[models.Article](t, body).Version)

	resp, body = env.do(t, fiber.MethodPost, path+"/schedule", tok, fiber.Map{"scheduledAt": time.Now().Add(-time.Hour)})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = env.do(t, fiber.MethodPost, path+"/publish", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	published := decode[models.Article](t, body)
	assert.Equal(t, models.StatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	resp, body = env.do(t, fiber.MethodGet, path+"/versions", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	versions := decode[[]models.ArticleVersion](t, body)
	require.Len(t, versions, 2)
	assert.Equal(t, "final tally", versions[1].ChangeNote)

	resp, body = env.do(t, fiber.MethodGet, fmt.Sprintf("/api/articles/%d", created.ID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[models.Article](t, body).ViewCount)
}

func TestArticleValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleEditor)

	resp, body := env.do(t, fiber.MethodPost, "/api/admin/articles", tok, fiber.Map{"content": "no title"})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	fields := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, body).Fields
	assert.Equal(t, "required", fields["title"])

	resp, body = env.do(t, fiber.MethodPost, "/api/admin/articles", tok, fiber.Map{
		"title": "Orphan", "content": "x", "categoryId": 4242,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "Category does not exist")
}

func TestEditorCannotDeleteArticle(t *testing.T) {
	env := newTestEnv(t)
	a := env.createArticle(t, "Keep me", models.StatusDraft)
	path := fmt.Sprintf("/api/admin/articles/%d", a.ID)

	resp, _ := env.do(t, fiber.MethodDelete, path, env.token(t, models.RoleEditor), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	_, err := env.store.GetArticle(context.Background(), a.ID)
	require.NoError(t, err)

	resp, _ = env.do(t, fiber.MethodDelete, path, env.token(t, models.RoleManager), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, fiber.MethodGet, path, env.token(t, models.RoleManager), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLimitedEditorCannotPublishThroughEdit(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleLimitedEditor)

	resp, _ := env.do(t, fiber.MethodPost, "/api/admin/articles", tok, fiber.Map{
		"title": "Sneaky", "content": "x", "status": "published",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	a := env.createArticle(t, "Draft", models.StatusDraft)
	path := fmt.Sprintf("/api/admin/articles/%d", a.ID)
	resp, _ = env.do(t, fiber.MethodPut, path, tok, fiber.Map{"status": "published"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, fiber.MethodPut, path, tok, fiber.Map{"title": "Draft, revised"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	got := decode[models.Article](t, body)
	assert.Equal(t, models.StatusDraft, got.Status)
	assert.Equal(t, 2, got.Version)
}

func TestPublicEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	live := env.createArticle(t, "Live story", models.StatusPublished)
	draft := env.createArticle(t, "Hidden story", models.StatusDraft)
	require.NoError(t, env.store.CreateBreakingNews(ctx, &models.BreakingNewsItem{Title: "Flash", IsActive: true, Priority: models.PriorityUrgent}))
	require.NoError(t, env.store.CreateAdvertisement(ctx, &models.Advertisement{Title: "Ad", ImageURL: "/a.png", Position: models.AdHeader, IsActive: true}))

	resp, body := env.do(t, fiber.MethodGet, "/api/articles", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	articles := decode[[]models.Article](t, body)
	require.Len(t, articles, 1)
	assert.Equal(t, live.ID, articles[0].ID)

	resp, _ = env.do(t, fiber.MethodGet, fmt.Sprintf("/api/articles/%d", draft.ID), "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	_, body = env.do(t, fiber.MethodGet, "/api/breaking-news", "", nil)
	assert.Len(t, decode[[]models.BreakingNewsItem](t, body), 1)

	_, body = env.do(t, fiber.MethodGet, "/api/advertisements?position=header", "", nil)
	ads := decode[[]models.Advertisement](t, body)
	require.Len(t, ads, 1)
	assert.Equal(t, 728, ads[0].Width)

	_, body = env.do(t, fiber.MethodGet, "/api/advertisements?position=footer", "", nil)
	assert.Empty(t, decode[[]models.Advertisement](t, body))

	resp, _ = env.do(t, fiber.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPublicListsDegradeWhenStorageFails(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Close())

	for _, path := range []string{"/api/categories", "/api/articles", "/api/breaking-news", "/api/videos"} {
		resp, body := env.do(t, fiber.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		assert.JSONEq(t, "[]", string(body), path)
	}

	resp, _ := env.do(t, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestRSSImportFlow(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleManager)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = io.WriteString(w, testFeed)
	}))
	defer srv.Close()

	resp, body := env.do(t, fiber.MethodPost, "/api/admin/rss-sources", tok, fiber.Map{
		"name": "Desk", "url": srv.URL, "category": "national",
		"importInterval": 60, "autoImport": true,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	src := decode[rssSourceView](t, body)
	assert.Equal(t, models.HealthStale, src.Health)
	assert.Equal(t, 60, src.ImportInterval)
	assert.True(t, src.AutoImport)
	assert.Nil(t, src.LastSyncAt)

	resp, _ = env.do(t, fiber.MethodPost, "/api/admin/rss-sources", tok, fiber.Map{"name": "Again", "url": srv.URL})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	base := fmt.Sprintf("/api/admin/rss-sources/%d", src.ID)
	resp, body = env.do(t, fiber.MethodPost, base+"/sync", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"importedCount":2`)
	res := decode[feed.SyncResult](t, body)
	assert.Equal(t, 2, res.ImportedCount)

	resp, body = env.do(t, fiber.MethodPost, base+"/sync", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[feed.SyncResult](t, body).ImportedCount)

	_, body = env.do(t, fiber.MethodGet, base, tok, nil)
	synced := decode[rssSourceView](t, body)
	assert.Equal(t, models.HealthActive, synced.Health)
	require.NotNil(t, synced.LastSyncAt)
	assert.WithinDuration(t, time.Now(), *synced.LastSyncAt, time.Minute)

	resp, body = env.do(t, fiber.MethodPost, "/api/admin/rss-sources/sync-all", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	summary := decode[map[string]any](t, body)
	assert.EqualValues(t, 0, summary["importedCount"])
	assert.NotContains(t, summary, "new")

	resp, body = env.do(t, fiber.MethodGet, base+"/items", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	items := decode[storage.Page[models.RssItem]](t, body)
	require.EqualValues(t, 2, items.Total)

	importPath := fmt.Sprintf("/api/admin/rss-items/%d/import", items.Items[0].ID)
	resp, body = env.do(t, fiber.MethodPost, importPath, tok, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	article := decode[models.Article](t, body)
	assert.Equal(t, models.StatusDraft, article.Status)
	assert.Equal(t, 1, article.Version)
	assert.Contains(t, []string(article.Tags), "national")

	resp, body = env.do(t, fiber.MethodGet, fmt.Sprintf("/api/admin/articles/%d/versions", article.ID), tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	versions := decode[[]models.ArticleVersion](t, body)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].Version)

	resp, _ = env.do(t, fiber.MethodPost, importPath, tok, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, fiber.MethodGet, base+"/items?imported=false", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[storage.Page[models.RssItem]](t, body).Total)
}

func TestRSSSyncFailureIsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleManager)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := &models.RssSource{Name: "Broken", URL: srv.URL, IsActive: true, ImportInterval: 30}
	require.NoError(t, env.store.CreateRssSource(context.Background(), src))

	resp, _ := env.do(t, fiber.MethodPost, fmt.Sprintf("/api/admin/rss-sources/%d/sync", src.ID), tok, nil)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	got, err := env.store.GetRssSource(context.Background(), src.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.LastError)
}

func TestUserManagementGuards(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleManager)
	me := env.accounts[models.RoleManager]

	resp, body := env.do(t, fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", me.ID), tok, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "your own account")

	resp, body = env.do(t, fiber.MethodPost, "/api/admin/users", tok, fiber.Map{
		"username": "second", "email": "second@example.com", "password": "long-enough", "role": "manager",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	second := decode[models.Account](t, body)
	assert.NotContains(t, string(body), "passwordHash")

	resp, _ = env.do(t, fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", second.ID), tok, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, fiber.MethodPut, fmt.Sprintf("/api/admin/users/%d", second.ID), tok, fiber.Map{"role": "editor"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "cannot be demoted")
	resp, _ = env.do(t, fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", second.ID), tok, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, fiber.MethodPut, fmt.Sprintf("/api/admin/users/%d", second.ID), tok, fiber.Map{"isActive": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.False(t, decode[models.Account](t, body).IsActive)

	editor := env.accounts[models.RoleEditor]
	resp, _ = env.do(t, fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", editor.ID), tok, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, fiber.MethodPost, "/api/admin/users", tok, fiber.Map{
		"username": "dup", "email": "SECOND@example.com", "password": "long-enough", "role": "viewer",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = env.do(t, fiber.MethodPost, "/api/admin/users", tok, fiber.Map{
		"username": "admin2", "email": "a2@example.com", "password": "long-enough", "role": "admin",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

	upload := func(content []byte) *http.Response {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", "photo.bin")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(fiber.MethodPost, "/api/admin/upload/image", &buf)
		req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+env.token(t, models.RoleLimitedEditor))
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := upload(png)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var up media.Upload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	assert.Equal(t, "image/png", up.ContentType)

	served, _ := env.do(t, fiber.MethodGet, up.URL, "", nil)
	assert.Equal(t, fiber.StatusOK, served.StatusCode)

	resp = upload([]byte("just some text"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestContentCRUD(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, models.RoleManager)

	resp, body := env.do(t, fiber.MethodPost, "/api/admin/categories", tok, fiber.Map{"title": "Sports News"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	cat := decode[models.Category](t, body)
	assert.Equal(t, "sports-news", cat.Slug)

	resp, _ = env.do(t, fiber.MethodPost, "/api/admin/categories", tok, fiber.Map{"title": "Other", "slug": "sports-news"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, fiber.MethodPost, "/api/admin/breaking-news", tok, fiber.Map{"title": "Quake", "priority": "critical"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, string(body))

	resp, body = env.do(t, fiber.MethodPost, "/api/admin/breaking-news", tok, fiber.Map{"title": "Quake", "priority": "urgent"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	item := decode[models.BreakingNewsItem](t, body)
	assert.True(t, item.IsActive)

	resp, body = env.do(t, fiber.MethodPut, fmt.Sprintf("/api/admin/breaking-news/%d", item.ID), tok, fiber.Map{"isActive": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.False(t, decode[models.BreakingNewsItem](t, body).IsActive)

	_, body = env.do(t, fiber.MethodGet, "/api/breaking-news", "", nil)
	assert.Empty(t, decode[[]models.BreakingNewsItem](t, body))

	resp, body = env.do(t, fiber.MethodGet, "/api/admin/breaking-news", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[storage.Page[models.BreakingNewsItem]](t, body).Total)

	resp, body = env.do(t, fiber.MethodPost, "/api/admin/live-streams", tok, fiber.Map{"name": "DD News", "streamUrl": "https://live.example.com/dd.m3u8"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	stream := decode[models.LiveStream](t, body)
	assert.Equal(t, models.StreamHLS, stream.StreamType)
	assert.Equal(t, "720p", stream.Quality)

	resp, _ = env.do(t, fiber.MethodDelete, fmt.Sprintf("/api/admin/live-streams/%d", stream.ID), tok, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, fiber.MethodDelete, fmt.Sprintf("/api/admin/live-streams/%d", stream.ID), tok, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
