package memory

import (
	"context"
	"testing"
	"time"

	"pet-adoption-hub/internal/domain/adoptions"
	"pet-adoption-hub/internal/domain/conversations"
	"pet-adoption-hub/internal/domain/favorites"
	"pet-adoption-hub/internal/domain/notifications"
	"pet-adoption-hub/internal/domain/pets"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPetRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewPetRepo()

	require.NoError(t, repo.Create(ctx, pets.Pet{ID: "a", Type: "dog", Location: "Buenos Aires", Status: pets.StatusAvailable, CreatedAt: t0}))
	require.NoError(t, repo.Create(ctx, pets.Pet{ID: "b", Type: "cat", Location: "Córdoba", Status: pets.StatusAvailable, CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, pets.Pet{ID: "c", Type: "dog", Location: "La Plata, Buenos Aires", Status: pets.StatusAdopted, CreatedAt: t0.Add(2 * time.Hour)}))
	require.NoError(t, repo.Create(ctx, pets.Pet{ID: "d", Type: "dog", Location: "buenos aires", Status: pets.StatusAvailable, CreatedAt: t0.Add(3 * time.Hour)}))

	err := repo.Create(ctx, pets.Pet{ID: "a"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := repo.List(ctx, pets.ListFilter{Status: pets.StatusAvailable, Type: "dog", Location: "buenos"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].ID)
	assert.Equal(t, "a", got[1].ID)

	got, _ = repo.List(ctx, pets.ListFilter{Limit: 1})
	require.Len(t, got, 1)
	assert.Equal(t, "d", got[0].ID)

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.GetByID(ctx, "a")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "a"), apperr.ErrNotFound)
}

func TestFavoriteRepo_UniquePerUserAndPet(t *testing.T) {
	ctx := context.Background()
	repo := NewFavoriteRepo()

	require.NoError(t, repo.Create(ctx, favorites.Favorite{ID: "f1", UserID: "u", PetID: "p", CreatedAt: t0}))
	err := repo.Create(ctx, favorites.Favorite{ID: "f2", UserID: "u", PetID: "p", CreatedAt: t0})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	require.NoError(t, repo.Delete(ctx, "f1"))
	_, err = repo.GetByUserAndPet(ctx, "u", "p")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Después de borrar se puede volver a marcar.
	require.NoError(t, repo.Create(ctx, favorites.Favorite{ID: "f3", UserID: "u", PetID: "p", CreatedAt: t0}))
}

func TestAdoptionRepo_StatusUpdatedBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewAdoptionRepo()

	require.NoError(t, repo.Create(ctx, adoptions.Request{ID: "old", Status: adoptions.StatusRejected, UpdatedAt: t0}))
	require.NoError(t, repo.Create(ctx, adoptions.Request{ID: "new", Status: adoptions.StatusRejected, UpdatedAt: t0.AddDate(0, 0, 10)}))
	require.NoError(t, repo.Create(ctx, adoptions.Request{ID: "pending", Status: adoptions.StatusPending, UpdatedAt: t0}))

	got, err := repo.ListByStatusUpdatedBefore(ctx, adoptions.StatusRejected, t0.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].ID)
}

func TestConversationRepo_MessagesAndReadMarks(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo()

	c := conversations.Conversation{ID: "c1", Participants: []string{"a", "b"}, CreatedAt: t0, LastMessageTime: t0}
	require.NoError(t, repo.Create(ctx, c))

	err := repo.CreateMessage(ctx, conversations.Message{ID: "m0", ConversationID: "missing"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, repo.CreateMessage(ctx, conversations.Message{ID: "m1", ConversationID: "c1", SenderID: "a", CreatedAt: t0.Add(time.Minute)}))
	require.NoError(t, repo.CreateMessage(ctx, conversations.Message{ID: "m2", ConversationID: "c1", SenderID: "b", CreatedAt: t0.Add(2 * time.Minute)}))

	n, err := repo.MarkMessagesRead(ctx, "c1", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	msgs, err := repo.ListMessages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].Read)
	assert.False(t, msgs[1].Read)

	// El slice devuelto no comparte estado con el repo.
	stored, _ := repo.GetByID(ctx, "c1")
	stored.Participants[0] = "z"
	again, _ := repo.GetByID(ctx, "c1")
	assert.Equal(t, []string{"a", "b"}, again.Participants)
}

func TestNotificationRepo_SameTimestampOrderIsDeterministic(t *testing.T) {
	ctx := context.Background()

	for range 20 {
		repo := NewNotificationRepo()
		for _, id := range []string{"n-b", "n-d", "n-a", "n-c"} {
			require.NoError(t, repo.Create(ctx, notifications.Notification{ID: id, UserID: "u", CreatedAt: t0}))
		}
		require.NoError(t, repo.Create(ctx, notifications.Notification{ID: "n-0", UserID: "u", CreatedAt: t0.Add(time.Second)}))

		got, err := repo.ListByUser(ctx, "u")
		require.NoError(t, err)
		ids := make([]string, 0, len(got))
		for _, n := range got {
			ids = append(ids, n.ID)
		}
		require.Equal(t, []string{"n-0", "n-d", "n-c", "n-b", "n-a"}, ids)
	}
}

func TestAdoptionRepo_SameTimestampOrderIsDeterministic(t *testing.T) {
	ctx := context.Background()

	for range 20 {
		repo := NewAdoptionRepo()
		for _, id := range []string{"r-2", "r-3", "r-1"} {
			require.NoError(t, repo.Create(ctx, adoptions.Request{ID: id, RequesterUserID: "u", PetID: "p", CreatedAt: t0}))
		}

		got, err := repo.ListByRequester(ctx, "u")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "r-3", got[0].ID)
		assert.Equal(t, "r-2", got[1].ID)
		assert.Equal(t, "r-1", got[2].ID)
	}
}
