package chat

import (
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	DefaultConversationTTL = 24 * time.Hour
	DefaultHistoryLimit    = 10
)

type conversation struct {
	Messages []types.ChatMessage
	Info     types.ChatUserInfo
}

func newConversation() conversation {
	return conversation{Info: types.ChatUserInfo{Preferences: []string{}}}
}

// clone deep-copies so callers never share slices with the cache.
func (c conversation) clone() conversation {
	out := conversation{Messages: slices.Clone(c.Messages), Info: c.Info}
	out.Info.Preferences = append([]string{}, c.Info.Preferences...)
	if c.Info.Location != nil {
		loc := *c.Info.Location
		out.Info.Location = &loc
	}
	if c.Info.Name != nil {
		name := *c.Info.Name
		out.Info.Name = &name
	}
	return out
}

// ConversationStore keeps one conversation per user. Every write restarts the
// TTL, so a conversation expires after a full TTL of inactivity.
type ConversationStore struct {
	mu    sync.Mutex
	items *cache.Cache
	limit int
}

func NewConversationStore(ttl time.Duration, limit int) *ConversationStore {
	if ttl <= 0 {
		ttl = DefaultConversationTTL
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &ConversationStore{items: cache.New(ttl, ttl/24), limit: limit}
}

// Get returns a copy of the user's conversation, empty when unknown.
func (s *ConversationStore) Get(userID string) conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(userID).clone()
}

// Update applies fn to the stored conversation and keeps the newest messages.
func (s *ConversationStore) Update(userID string, fn func(*conversation)) conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(userID).clone()
	fn(&c)
	if len(c.Messages) > s.limit {
		c.Messages = slices.Clone(c.Messages[len(c.Messages)-s.limit:])
	}
	s.items.Set(userID, c, cache.DefaultExpiration)
	return c.clone()
}

func (s *ConversationStore) Delete(userID string) {
	s.items.Delete(userID)
}

func (s *ConversationStore) load(userID string) conversation {
	if v, ok := s.items.Get(userID); ok {
		return v.(conversation)
	}
	return newConversation()
}
