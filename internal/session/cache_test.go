package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/sleepbot/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	users     map[int64]*models.User
	loads     int
	creates   int
	loadErr   error
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*models.User)}
}

func (f *fakeStore) LoadUser(_ context.Context, chatID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	u, ok := f.users[chatID]
	if !ok {
		return nil, nil
	}
	return u.Clone(), nil
}

func (f *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.users[u.ChatID] = u.Clone()
	return nil
}

func TestCache_CreatesUnknownUser(t *testing.T) {
	store := newFakeStore()
	c := New(store, zerolog.Nop())

	u, err := c.GetOrCreate(context.Background(), 1, "Ann")
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ChatID)
	assert.Equal(t, "Ann", u.DisplayName)
	assert.False(t, u.IsSleeping)
	assert.Zero(t, u.CycleCount())
	assert.Equal(t, 1, store.creates)
	assert.Contains(t, store.users, int64(1))
}

func TestCache_HydratesExistingUserOnce(t *testing.T) {
	store := newFakeStore()
	existing := models.NewUser(2, "Bob")
	existing.IsSleeping = true
	existing.PutCycle(&models.Cycle{Date: "2024-01-01", SleepInstant: 1})
	store.users[2] = existing

	c := New(store, zerolog.Nop())
	ctx := context.Background()

	first, err := c.GetOrCreate(ctx, 2, "ignored")
	require.NoError(t, err)
	second, err := c.GetOrCreate(ctx, 2, "ignored")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "Bob", first.DisplayName)
	assert.True(t, first.IsSleeping)
	assert.Equal(t, []string{"2024-01-01"}, first.Dates())
	assert.Equal(t, 1, store.loads)
	assert.Zero(t, store.creates)
	assert.Equal(t, 1, c.Len())
}

func TestCache_LoadFailureIsRetried(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("disk on fire")
	c := New(store, zerolog.Nop())
	ctx := context.Background()

	_, err := c.GetOrCreate(ctx, 3, "Cid")
	require.Error(t, err)

	store.loadErr = nil
	u, err := c.GetOrCreate(ctx, 3, "Cid")
	require.NoError(t, err)
	assert.Equal(t, "Cid", u.DisplayName)
}

func TestCache_WithSerialisesPerUser(t *testing.T) {
	c := New(newFakeStore(), zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.With(ctx, 4, "Dee", func(u *models.User) error {
				// unsynchronised read-modify-write, safe only under the user lock
				u.DisplayName += "x"
				return nil
			})
		}()
	}
	wg.Wait()

	u, err := c.GetOrCreate(ctx, 4, "")
	require.NoError(t, err)
	assert.Len(t, u.DisplayName, len("Dee")+50)
}
