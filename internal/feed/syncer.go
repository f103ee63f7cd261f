package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/bilgisen/khabar/internal/ai"
	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/cache"
	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/models"
)

const excerptRunes = 300

// Repository is the storage the importer works against.
type Repository interface {
	GetRssSource(ctx context.Context, id uint) (*models.RssSource, error)
	ListActiveRssSources(ctx context.Context, autoImportOnly bool) ([]models.RssSource, error)
	StageItems(ctx context.Context, sourceID uint, items []models.RssItem) ([]models.RssItem, error)
	RecordSyncSuccess(ctx context.Context, sourceID uint, staged int) error
	RecordSyncFailure(ctx context.Context, sourceID uint, msg string) error
	GetRssItem(ctx context.Context, id uint) (*models.RssItem, error)
	PromoteItem(ctx context.Context, itemID uint, a *models.Article, authorID *uint) error
	GetArticle(ctx context.Context, id uint) (*models.Article, error)
}

// Translator fills the Hindi side of an imported story.
type Translator interface {
	TranslateToHindi(ctx context.Context, in ai.Translation) (ai.Translation, error)
}

// SyncResult reports one source's sync.
type SyncResult struct {
	SourceID      uint   `json:"sourceId"`
	SourceName    string `json:"sourceName"`
	Fetched       int    `json:"fetched"`
	ImportedCount int    `json:"importedCount"`
	Skipped       int    `json:"skipped"`
	Error         string `json:"error,omitempty"`
}

type SyncerConfig struct {
	Concurrency int
	SeenTTL     time.Duration
}

// Syncer fetches feeds, stages unseen entries and promotes staged entries
// into draft articles.
type Syncer struct {
	repo        Repository
	fetcher     *Fetcher
	parser      *Parser
	seen        cache.ProcessedSet
	translator  Translator
	concurrency int
	seenTTL     time.Duration
	now         func() time.Time
	log         *zerolog.Logger
}

func NewSyncer(repo Repository, fetcher *Fetcher, seen cache.ProcessedSet, cfg SyncerConfig) *Syncer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.SeenTTL <= 0 {
		cfg.SeenTTL = 7 * 24 * time.Hour
	}
	if seen == nil {
		seen = cache.NewMemorySet()
	}
	return &Syncer{
		repo:        repo,
		fetcher:     fetcher,
		parser:      NewParser(),
		seen:        seen,
		concurrency: cfg.Concurrency,
		seenTTL:     cfg.SeenTTL,
		now:         func() time.Time { return time.Now().UTC() },
		log:         logger.Component("rss"),
	}
}

// SetTranslator enables Hindi translation of promoted entries.
func (s *Syncer) SetTranslator(t Translator) {
	s.translator = t
}

// SyncSource fetches one source and stages its new entries. A fetch or parse
// failure is recorded on the source and returned as UpstreamFetch.
func (s *Syncer) SyncSource(ctx context.Context, sourceID uint) (*SyncResult, error) {
	src, err := s.repo.GetRssSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	res := s.sync(ctx, src)
	if res.err != nil {
		return &res.SyncResult, res.err
	}
	return &res.SyncResult, nil
}

type syncOutcome struct {
	SyncResult
	err error
}

func (s *Syncer) sync(ctx context.Context, src *models.RssSource) syncOutcome {
	start := time.Now()
	out := syncOutcome{SyncResult: SyncResult{SourceID: src.ID, SourceName: src.Name}}
	log := s.log.With().Uint("source_id", src.ID).Str("url", src.URL).Logger()

	// Retries never run past the next scheduled poll.
	timeout := src.Interval()
	if timeout <= 0 {
		timeout = time.Hour
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fail := func(msg string, cause error) syncOutcome {
		log.Error().Err(cause).Msg(msg)
		if err := s.repo.RecordSyncFailure(context.WithoutCancel(ctx), src.ID, msg+": "+cause.Error()); err != nil {
			log.Error().Err(err).Msg("Failed to record sync failure")
		}
		out.err = apperr.UpstreamFetch(msg, cause)
		out.Error = out.err.Error()
		return out
	}

	body, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return fail("Failed to fetch RSS feed", err)
	}
	items, skipped, err := s.parser.Parse(body)
	if err != nil {
		return fail("Failed to parse RSS feed", err)
	}
	out.Fetched = len(items)
	out.Skipped = len(skipped)
	if len(skipped) > 0 {
		log.Warn().Errs("skipped", skipped).Msg("Skipped invalid feed entries")
	}

	fresh := s.filterSeen(ctx, src.ID, items)
	now := s.now()
	for i := range fresh {
		at := publishedOrNow(fresh[i], now)
		fresh[i].PublishedAt = &at
	}

	staged, err := s.repo.StageItems(ctx, src.ID, fresh)
	if err != nil {
		out.err = err
		out.Error = err.Error()
		log.Error().Err(err).Msg("Failed to stage feed entries")
		return out
	}
	out.ImportedCount = len(staged)

	for _, item := range items {
		if err := s.seen.MarkProcessed(ctx, cache.ItemKey(src.ID, item.GUID), s.seenTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to mark entry as seen")
			break
		}
	}

	if err := s.repo.RecordSyncSuccess(ctx, src.ID, out.ImportedCount); err != nil {
		out.err = err
		out.Error = err.Error()
		return out
	}

	log.Info().
		Int("fetched", out.Fetched).
		Int("imported", out.ImportedCount).
		Dur("duration", time.Since(start)).
		Msg("RSS source synced")
	return out
}

// filterSeen drops entries the seen-set already knows. Lookup errors keep the
// entry; the database unique index still rejects real duplicates.
func (s *Syncer) filterSeen(ctx context.Context, sourceID uint, items []models.RssItem) []models.RssItem {
	return lo.Filter(items, func(item models.RssItem, _ int) bool {
		seen, err := s.seen.IsProcessed(ctx, cache.ItemKey(sourceID, item.GUID))
		if err != nil {
			s.log.Warn().Err(err).Msg("Seen-set lookup failed")
			return true
		}
		return !seen
	})
}

// SyncAll syncs every active source concurrently. A failing source is
// reported in its own result and does not stop the others.
func (s *Syncer) SyncAll(ctx context.Context) ([]SyncResult, error) {
	sources, err := s.repo.ListActiveRssSources(ctx, false)
	if err != nil {
		return nil, err
	}

	results := make([]SyncResult, len(sources))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i := range sources {
		select {
		case <-ctx.Done():
			for j := i; j < len(sources); j++ {
				results[j] = SyncResult{SourceID: sources[j].ID, SourceName: sources[j].Name, Error: ctx.Err().Error()}
			}
			wg.Wait()
			return results, nil
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.sync(ctx, &sources[i]).SyncResult
		}(i)
	}

	wg.Wait()
	return results, nil
}

// Promote turns a staged entry into a draft article attributed to author.
func (s *Syncer) Promote(ctx context.Context, itemID uint, author *models.Account) (*models.Article, error) {
	item, err := s.repo.GetRssItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.IsImported {
		return nil, apperr.Conflict("RSS item has already been imported")
	}

	article := &models.Article{
		Title:      item.Title,
		Content:    lo.Ternary(item.Summary != "", item.Summary, item.Title),
		Excerpt:    truncate(item.Summary, excerptRunes),
		ImageURL:   item.ImageURL,
		AuthorName: item.Author,
		Tags:       models.StringSlice{},
	}

	var authorID *uint
	if author != nil {
		authorID = &author.ID
		if article.AuthorName == "" {
			article.AuthorName = author.Username
		}
	}
	if src, err := s.repo.GetRssSource(ctx, item.SourceID); err == nil {
		if article.AuthorName == "" {
			article.AuthorName = src.Name
		}
		if src.Category != "" {
			article.Tags = append(article.Tags, src.Category)
		}
	}

	s.translate(ctx, article)

	if err := s.repo.PromoteItem(ctx, itemID, article, authorID); err != nil {
		return nil, err
	}
	s.log.Info().Uint("item_id", itemID).Uint("article_id", article.ID).Msg("RSS item imported")
	return s.repo.GetArticle(ctx, article.ID)
}

// translate is best effort: without a translator, or on failure, the Hindi
// fields stay empty for an editor to fill in.
func (s *Syncer) translate(ctx context.Context, a *models.Article) {
	if s.translator == nil {
		return
	}
	hi, err := s.translator.TranslateToHindi(ctx, ai.Translation{Title: a.Title, Excerpt: a.Excerpt, Content: a.Content})
	if err != nil {
		s.log.Warn().Err(err).Msg("Hindi translation failed")
		return
	}
	a.TitleHi = hi.Title
	a.ExcerptHi = hi.Excerpt
	a.ContentHi = hi.Content
}
