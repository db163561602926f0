// Package session keeps live users in memory for the lifetime of the process.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/sleepbot/pkg/models"
	"github.com/rs/zerolog"
)

// Store is what the cache needs from durable storage
type Store interface {
	// LoadUser returns nil, nil for an unknown chat
	LoadUser(ctx context.Context, chatID int64) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

type entry struct {
	mu     sync.Mutex
	user   *models.User
	loaded bool
}

// Cache maps chat identity to the live user. Entries are never evicted.
//
// All access to a user goes through With, which holds that user's lock, so
// operations on one chat are serialised while different chats proceed
// independently.
type Cache struct {
	store Store
	log   zerolog.Logger

	mu      sync.Mutex
	entries map[int64]*entry
}

// New creates an empty cache backed by store
func New(store Store, log zerolog.Logger) *Cache {
	return &Cache{
		store:   store,
		log:     log.With().Str("component", "session").Logger(),
		entries: make(map[int64]*entry),
	}
}

// With runs fn with exclusive access to the user for chatID, hydrating or
// registering the user first if this is the first contact. nameHint is used
// only when a new user has to be created.
func (c *Cache) With(ctx context.Context, chatID int64, nameHint string, fn func(u *models.User) error) error {
	e := c.entry(chatID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		u, err := c.hydrate(ctx, chatID, nameHint)
		if err != nil {
			return err
		}
		e.user = u
		e.loaded = true
	}
	return fn(e.user)
}

// GetOrCreate returns the live user for chatID. Callers that mutate the user
// must use With instead.
func (c *Cache) GetOrCreate(ctx context.Context, chatID int64, nameHint string) (*models.User, error) {
	var user *models.User
	err := c.With(ctx, chatID, nameHint, func(u *models.User) error {
		user = u
		return nil
	})
	return user, err
}

// Len returns the number of cached users
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) entry(chatID int64) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[chatID]
	if !ok {
		e = &entry{}
		c.entries[chatID] = e
	}
	return e
}

func (c *Cache) hydrate(ctx context.Context, chatID int64, nameHint string) (*models.User, error) {
	u, err := c.store.LoadUser(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", chatID, err)
	}
	if u != nil {
		c.log.Debug().Int64("chat_id", chatID).Int("cycles", u.CycleCount()).Bool("sleeping", u.IsSleeping).Msg("user loaded")
		return u, nil
	}

	u = models.NewUser(chatID, nameHint)
	if err := c.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to register user %d: %w", chatID, err)
	}
	c.log.Info().Int64("chat_id", chatID).Msg("new user registered")
	return u, nil
}
