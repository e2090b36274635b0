package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"furrykids/pkg/domain"
)

// ErrFeedNotFound indicates the referenced feed post does not exist.
var ErrFeedNotFound = errors.New("feed not found")

// FeedStore owns the social feed timeline, newest first.
type FeedStore struct {
	logger *slog.Logger
	obs    observers

	mu    sync.Mutex
	feeds []domain.Feed
}

// NewFeedStore seeds the store. An empty seed list gets the sample feeds.
func NewFeedStore(feeds []domain.Feed, logger *slog.Logger) *FeedStore {
	if logger == nil {
		logger = slog.Default()
	}
	if len(feeds) == 0 {
		feeds = domain.SampleFeeds()
	}
	owned := make([]domain.Feed, len(feeds))
	copy(owned, feeds)
	return &FeedStore{logger: logger, feeds: owned}
}

// Subscribe registers a callback invoked synchronously after each mutation.
func (s *FeedStore) Subscribe(fn func()) {
	s.obs.subscribe(fn)
}

// Feeds returns a copy of the timeline, newest first.
func (s *FeedStore) Feeds() []domain.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Feed, len(s.feeds))
	copy(out, s.feeds)
	return out
}

// AddFeed publishes a new post at the head of the timeline.
func (s *FeedStore) AddFeed(content string, images []string, pet domain.Pet) domain.Feed {
	feed := domain.Feed{
		ID:        uuid.New(),
		PetID:     pet.ID,
		PetName:   pet.Name,
		PetAvatar: pet.Avatar,
		Content:   content,
		Images:    append([]string(nil), images...),
		Mood:      "开心",
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.feeds = append([]domain.Feed{feed}, s.feeds...)
	s.mu.Unlock()
	s.obs.notify()
	return feed
}

// Like increments the post's like counter and marks it liked.
func (s *FeedStore) Like(feedID uuid.UUID) error {
	return s.mutate(feedID, func(f *domain.Feed) {
		f.Likes++
		f.IsLiked = true
	})
}

// AddComment increments the post's comment counter.
func (s *FeedStore) AddComment(feedID uuid.UUID) error {
	return s.mutate(feedID, func(f *domain.Feed) {
		f.Comments++
	})
}

func (s *FeedStore) mutate(feedID uuid.UUID, fn func(*domain.Feed)) error {
	s.mu.Lock()
	for i := range s.feeds {
		if s.feeds[i].ID == feedID {
			fn(&s.feeds[i])
			s.mu.Unlock()
			s.obs.notify()
			return nil
		}
	}
	s.mu.Unlock()
	return ErrFeedNotFound
}

// RelativeTime renders a post timestamp the way the feed UI shows it.
func RelativeTime(t time.Time) string {
	minutes := int(time.Since(t).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d分钟前", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%d小时前", minutes/60)
	default:
		return fmt.Sprintf("%d天前", minutes/1440)
	}
}
