package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newDraft(t *testing.T, s *Store, title string) *models.Article {
	t.Helper()
	a := &models.Article{Title: title, Content: "body of " + title, Tags: models.StringSlice{"news"}}
	require.NoError(t, s.CreateArticle(context.Background(), a, "", nil))
	return a
}

func TestCreateArticleRecordsFirstVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newDraft(t, s, "First")
	assert.NotZero(t, a.ID)
	assert.Equal(t, 1, a.Version)
	assert.Equal(t, models.StatusDraft, a.Status)
	assert.Nil(t, a.PublishedAt)

	versions, err := s.ListVersions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, "First", versions[0].Title)
	assert.Equal(t, "Created", versions[0].ChangeNote)
}

func TestUpdateArticleVersionsAreSequential(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := uint(7)

	a := newDraft(t, s, "Story")
	for i := 1; i <= 3; i++ {
		updated, err := s.UpdateArticle(ctx, a.ID, ArticleUpdate{
			Fields:     map[string]any{"content": fmt.Sprintf("revision %d", i)},
			ChangeNote: fmt.Sprintf("edit %d", i),
			AuthorID:   &author,
		})
		require.NoError(t, err)
		assert.Equal(t, i+1, updated.Version)
	}

	versions, err := s.ListVersions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, versions, 4)
	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
	}
	assert.Equal(t, "revision 3", versions[3].Content)
	assert.Equal(t, "edit 3", versions[3].ChangeNote)
	require.NotNil(t, versions[3].AuthorID)
	assert.Equal(t, author, *versions[3].AuthorID)
}

func TestUpdateWithoutContentChangeKeepsVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newDraft(t, s, "Flags")
	updated, err := s.UpdateArticle(ctx, a.ID, ArticleUpdate{
		Fields: map[string]any{"is_trending": true, "title": "Flags"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)
	assert.True(t, updated.IsTrending)

	versions, err := s.ListVersions(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestConcurrentUpdatesNeverShareVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newDraft(t, s, "Contended")

	const editors = 10
	var wg sync.WaitGroup
	errs := make(chan error, editors)
	for i := 0; i < editors; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.UpdateArticle(ctx, a.ID, ArticleUpdate{
				Fields: map[string]any{"content": fmt.Sprintf("editor %d", n)},
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	versions, err := s.ListVersions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, versions, editors+1)
	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
	}

	final, err := s.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, editors+1, final.Version)
}

func TestPublishNowAndSchedule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	a := newDraft(t, s, "Publish me")
	published, err := s.PublishArticle(ctx, a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.False(t, published.PublishedAt.Before(before))

	b := newDraft(t, s, "Schedule me")
	at := time.Now().UTC().Add(2 * time.Hour)
	scheduled, err := s.ScheduleArticle(ctx, b.ID, at, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, scheduled.Status)
	assert.Nil(t, scheduled.PublishedAt)
	require.NotNil(t, scheduled.ScheduledAt)
	assert.WithinDuration(t, at, *scheduled.ScheduledAt, time.Second)

	_, err = s.ScheduleArticle(ctx, b.ID, time.Now().Add(-time.Minute), nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestLeavingPublishedClearsPublishedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newDraft(t, s, "Toggle")
	_, err := s.PublishArticle(ctx, a.ID, nil)
	require.NoError(t, err)

	draft := models.StatusDraft
	back, err := s.UpdateArticle(ctx, a.ID, ArticleUpdate{Status: &draft})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, back.Status)
	assert.Nil(t, back.PublishedAt)
}

func TestPublishDuePromotesScheduledArticles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newDraft(t, s, "Later")
	_, err := s.ScheduleArticle(ctx, a.ID, time.Now().UTC().Add(time.Hour), nil)
	require.NoError(t, err)

	n, err := s.PublishDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	s.SetClock(func() time.Time { return time.Now().UTC().Add(2 * time.Hour) })
	n, err = s.PublishDue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, got.Status)
	assert.NotNil(t, got.PublishedAt)
	assert.Nil(t, got.ScheduledAt)
}

func TestPublicArticleQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	draft := newDraft(t, s, "Hidden draft")
	pub := newDraft(t, s, "Cricket final")
	_, err := s.PublishArticle(ctx, pub.ID, nil)
	require.NoError(t, err)
	_, err = s.UpdateArticle(ctx, pub.ID, ArticleUpdate{Fields: map[string]any{"is_trending": true}})
	require.NoError(t, err)

	page, err := s.ListPublishedArticles(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, pub.ID, page.Items[0].ID)
	assert.EqualValues(t, 1, page.Total)

	_, err = s.GetPublishedArticle(ctx, draft.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := s.GetPublishedArticle(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)

	trending, err := s.ListTrendingArticles(ctx, 5)
	require.NoError(t, err)
	require.Len(t, trending, 1)

	search, err := s.ListArticles(ctx, ListFilter{Search: "cricket"})
	require.NoError(t, err)
	require.Len(t, search.Items, 1)
	assert.Equal(t, pub.ID, search.Items[0].ID)
}

func TestCategorySlugUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.Category{Title: "World News"}
	require.NoError(t, s.CreateCategory(ctx, first))
	assert.Equal(t, "world-news", first.Slug)

	second := &models.Category{Title: "world   news!"}
	err := s.CreateCategory(ctx, second)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	other := &models.Category{Title: "Sports"}
	require.NoError(t, s.CreateCategory(ctx, other))
	_, err = s.UpdateCategory(ctx, other.ID, map[string]any{"slug": "World News"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestDeletedCategoryShowsUncategorized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cat := &models.Category{Title: "Politics"}
	require.NoError(t, s.CreateCategory(ctx, cat))
	a := &models.Article{Title: "Vote", Content: "...", CategoryID: &cat.ID}
	require.NoError(t, s.CreateArticle(ctx, a, "", nil))

	got, err := s.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Politics", got.CategoryTitle)

	require.NoError(t, s.DeleteCategory(ctx, cat.ID))
	got, err = s.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, "Uncategorized", got.CategoryTitle)
}

func TestManagerAccountsCannotBeDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := &models.Account{Username: "boss", Email: "Boss@Example.com", PasswordHash: "x", Role: models.RoleManager, IsActive: true}
	require.NoError(t, s.CreateAccount(ctx, m))
	assert.Equal(t, "boss@example.com", m.Email)

	err := s.DeleteAccount(ctx, m.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	e := &models.Account{Username: "ed", Email: "ed@example.com", PasswordHash: "x", Role: models.RoleEditor}
	require.NoError(t, s.CreateAccount(ctx, e))
	require.NoError(t, s.DeleteAccount(ctx, e.ID))

	dup := &models.Account{Username: "boss2", Email: "boss@example.com", PasswordHash: "x", Role: models.RoleViewer}
	assert.True(t, apperr.Is(s.CreateAccount(ctx, dup), apperr.KindConflict))
}

func TestManagerAccountsCannotBeDemoted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := &models.Account{Username: "boss", Email: "boss@example.com", PasswordHash: "x", Role: models.RoleManager, IsActive: true}
	require.NoError(t, s.CreateAccount(ctx, m))

	_, err := s.UpdateAccount(ctx, m.ID, map[string]any{"role": models.RoleEditor})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = s.UpdateAccount(ctx, m.ID, map[string]any{"role": "viewer"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err := s.GetAccount(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, got.Role)
	assert.True(t, apperr.Is(s.DeleteAccount(ctx, m.ID), apperr.KindValidation))

	got, err = s.UpdateAccount(ctx, m.ID, map[string]any{"role": models.RoleManager, "is_active": false})
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	e := &models.Account{Username: "ed", Email: "ed@example.com", PasswordHash: "x", Role: models.RoleEditor}
	require.NoError(t, s.CreateAccount(ctx, e))
	got, err = s.UpdateAccount(ctx, e.ID, map[string]any{"role": models.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, got.Role)
}

func TestInactiveFlagPersists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &models.Account{Username: "off", Email: "off@example.com", PasswordHash: "x", Role: models.RoleEditor, IsActive: false}
	require.NoError(t, s.CreateAccount(ctx, a))
	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestStageItemsSkipsSeenEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src := &models.RssSource{Name: "Feed", URL: "https://example.com/rss", IsActive: true, ImportInterval: 60}
	require.NoError(t, s.CreateRssSource(ctx, src))

	items := []models.RssItem{
		{GUID: "a", Title: "A", Link: "https://example.com/a"},
		{GUID: "b", Title: "B", Link: "https://example.com/b"},
	}
	staged, err := s.StageItems(ctx, src.ID, items)
	require.NoError(t, err)
	assert.Len(t, staged, 2)

	staged, err = s.StageItems(ctx, src.ID, items)
	require.NoError(t, err)
	assert.Empty(t, staged)

	require.NoError(t, s.RecordSyncSuccess(ctx, src.ID, 2))
	got, err := s.GetRssSource(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ArticlesImported)
	assert.NotNil(t, got.LastSyncAt)

	dup := &models.RssSource{Name: "Again", URL: "https://example.com/rss", ImportInterval: 60}
	assert.True(t, apperr.Is(s.CreateRssSource(ctx, dup), apperr.KindConflict))
}

func TestPromoteItemCreatesDraftOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src := &models.RssSource{Name: "Feed", URL: "https://example.com/feed", IsActive: true, ImportInterval: 30}
	require.NoError(t, s.CreateRssSource(ctx, src))
	staged, err := s.StageItems(ctx, src.ID, []models.RssItem{{GUID: "x", Title: "Headline", Summary: "Summary"}})
	require.NoError(t, err)
	require.Len(t, staged, 1)

	article := &models.Article{Title: "Headline", Content: "Summary"}
	require.NoError(t, s.PromoteItem(ctx, staged[0].ID, article, nil))
	assert.Equal(t, models.StatusDraft, article.Status)

	versions, err := s.ListVersions(ctx, article.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)

	item, err := s.GetRssItem(ctx, staged[0].ID)
	require.NoError(t, err)
	assert.True(t, item.IsImported)
	assert.NotNil(t, item.ImportedAt)
	require.NotNil(t, item.ArticleID)
	assert.Equal(t, article.ID, *item.ArticleID)

	again := &models.Article{Title: "Headline", Content: "Summary"}
	err = s.PromoteItem(ctx, staged[0].ID, again, nil)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	all, err := s.ListArticles(ctx, ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, all.Total, "a failed promotion must not leave an article behind")
}

func TestVisibleBreakingNews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)
	require.NoError(t, s.CreateBreakingNews(ctx, &models.BreakingNewsItem{Title: "low", Priority: models.PriorityLow, IsActive: true}))
	require.NoError(t, s.CreateBreakingNews(ctx, &models.BreakingNewsItem{Title: "urgent", Priority: models.PriorityUrgent, IsActive: true, ExpiresAt: &future}))
	require.NoError(t, s.CreateBreakingNews(ctx, &models.BreakingNewsItem{Title: "expired", Priority: models.PriorityUrgent, IsActive: true, ExpiresAt: &past}))
	require.NoError(t, s.CreateBreakingNews(ctx, &models.BreakingNewsItem{Title: "off", Priority: models.PriorityHigh, IsActive: false}))

	items, err := s.ListVisibleBreakingNews(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "urgent", items[0].Title)
	assert.Equal(t, "low", items[1].Title)
}

func TestAdvertisementDefaultsAndNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ad := &models.Advertisement{Title: "Banner", ImageURL: "https://cdn/x.png", Position: models.AdHeader, IsActive: true}
	require.NoError(t, s.CreateAdvertisement(ctx, ad))
	assert.Equal(t, 728, ad.Width)
	assert.Equal(t, 90, ad.Height)

	custom := &models.Advertisement{Title: "Box", ImageURL: "https://cdn/y.png", Position: models.AdSidebar, Width: 160, IsActive: true}
	require.NoError(t, s.CreateAdvertisement(ctx, custom))
	assert.Equal(t, 160, custom.Width)
	assert.Equal(t, 250, custom.Height)

	header, err := s.ListActiveAdvertisements(ctx, string(models.AdHeader))
	require.NoError(t, err)
	assert.Len(t, header, 1)

	assert.True(t, apperr.Is(s.DeleteAdvertisement(ctx, 9999), apperr.KindNotFound))
	_, err = s.UpdateVideo(ctx, 9999, map[string]any{"title": "x"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
