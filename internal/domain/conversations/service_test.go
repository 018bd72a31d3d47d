package conversations

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"pet-adoption-hub/internal/domain/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	convs    map[string]Conversation
	messages []Message
}

func newTestRepo() *testRepo { return &testRepo{convs: map[string]Conversation{}} }

func (r *testRepo) Create(_ context.Context, c Conversation) error {
	r.convs[c.ID] = c
	return nil
}

func (r *testRepo) Update(_ context.Context, c Conversation) error {
	if _, ok := r.convs[c.ID]; !ok {
		return ErrNotFound
	}
	r.convs[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Conversation, error) {
	c, ok := r.convs[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) ListByParticipant(_ context.Context, userID string) ([]Conversation, error) {
	out := []Conversation{}
	for _, c := range r.convs {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageTime.After(out[j].LastMessageTime) })
	return out, nil
}

func (r *testRepo) ListByPet(_ context.Context, petID string) ([]Conversation, error) {
	out := []Conversation{}
	for _, c := range r.convs {
		if c.PetID == petID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *testRepo) CreateMessage(_ context.Context, m Message) error {
	r.messages = append(r.messages, m)
	return nil
}

func (r *testRepo) ListMessages(_ context.Context, conversationID string) ([]Message, error) {
	out := []Message{}
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) MarkMessagesRead(_ context.Context, conversationID, readerID string) (int, error) {
	n := 0
	for i, m := range r.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID && !m.Read {
			r.messages[i].Read = true
			n++
		}
	}
	return n, nil
}

type fakeNotifier struct {
	created []notifications.CreateInput
	err     error
}

func (f *fakeNotifier) Create(_ context.Context, in notifications.CreateInput) (notifications.Notification, error) {
	if f.err != nil {
		return notifications.Notification{}, f.err
	}
	f.created = append(f.created, in)
	return notifications.Notification{ID: "n", UserID: in.UserID}, nil
}

func newTestService() (*Service, *testRepo, *fakeNotifier) {
	repo := newTestRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc, repo, notifier
}

func TestGetOrCreate_SamePairReturnsSameConversation(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	first, created, err := svc.GetOrCreate(ctx, "zoe", "adam", "pet-1", "req-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"adam", "zoe"}, first.Participants)
	assert.Equal(t, "", first.LastMessage)
	assert.Equal(t, first.CreatedAt, first.LastMessageTime)

	again, created, err := svc.GetOrCreate(ctx, "adam", "zoe", "", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, repo.convs, 1)

	other, created, err := svc.GetOrCreate(ctx, "adam", "eve", "", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetOrCreate_RejectsSelfAndEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.GetOrCreate(ctx, "a", "a", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.GetOrCreate(ctx, "a", " ", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSendMessage_UpdatesSummaryAndNotifiesOtherParticipant(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()
	c, _, _ := svc.GetOrCreate(ctx, "owner", "adopter", "pet-1", "req-1")

	m, err := svc.SendMessage(ctx, c.ID, "adopter", "Ana", "  hola!  ")
	require.NoError(t, err)
	assert.Equal(t, "hola!", m.Content)
	assert.False(t, m.IsSystem())

	stored := repo.convs[c.ID]
	assert.Equal(t, "hola!", stored.LastMessage)
	assert.Equal(t, m.CreatedAt, stored.LastMessageTime)

	require.Len(t, notifier.created, 1)
	n := notifier.created[0]
	assert.Equal(t, "owner", n.UserID)
	assert.Equal(t, notifications.TypeMessage, n.Type)
	assert.Equal(t, c.ID, n.Links.ConversationID)
	assert.Equal(t, "pet-1", n.Links.PetID)
	assert.Contains(t, n.Title, "Ana")
}

func TestSendMessage_Guards(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()
	c, _, _ := svc.GetOrCreate(ctx, "owner", "adopter", "", "")

	_, err := svc.SendMessage(ctx, c.ID, "stranger", "X", "hola")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SendMessage(ctx, c.ID, "owner", "O", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SendMessage(ctx, c.ID, "owner", "O", strings.Repeat("a", maxMessageLen+1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SendMessage(ctx, "missing", "owner", "O", "hola")
	assert.ErrorIs(t, err, ErrNotFound)

	// Un fallo del aviso no invalida el mensaje.
	notifier.err = errors.New("notifications down")
	_, err = svc.SendMessage(ctx, c.ID, "owner", "O", "sigue funcionando")
	assert.NoError(t, err)
}

func TestListMessagesAndMarkRead(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	c, _, _ := svc.GetOrCreate(ctx, "owner", "adopter", "", "")

	_, _ = svc.SendMessage(ctx, c.ID, "adopter", "A", "uno")
	_, _ = svc.SendMessage(ctx, c.ID, "adopter", "A", "dos")
	_, _ = svc.SendMessage(ctx, c.ID, "owner", "O", "tres")

	msgs, err := svc.ListMessages(ctx, "owner", c.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "uno", msgs[0].Content)
	assert.Equal(t, "tres", msgs[2].Content)

	_, err = svc.ListMessages(ctx, "stranger", c.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	marked, err := svc.MarkMessagesRead(ctx, "owner", c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	marked, err = svc.MarkMessagesRead(ctx, "owner", c.ID)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestAnnouncePetRemoval_KeepsConversationAndAddsSystemMessage(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()
	linked, _, _ := svc.GetOrCreate(ctx, "owner", "adopter", "pet-1", "")
	unrelated, _, _ := svc.GetOrCreate(ctx, "owner", "someone", "pet-2", "")

	n, err := svc.AnnouncePetRemoval(ctx, "pet-1", "Luna")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, repo.convs, 2)

	msgs, _ := svc.ListMessages(ctx, "owner", linked.ID)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsSystem())
	assert.Contains(t, msgs[0].Content, "Luna")
	assert.Equal(t, msgs[0].Content, repo.convs[linked.ID].LastMessage)

	msgs, _ = svc.ListMessages(ctx, "owner", unrelated.ID)
	assert.Empty(t, msgs)
	assert.Empty(t, notifier.created, "system messages do not notify")
}

func TestListForUser_MostRecentFirst(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	a, _, _ := svc.GetOrCreate(ctx, "me", "a", "", "")
	b, _, _ := svc.GetOrCreate(ctx, "me", "b", "", "")
	_, _ = svc.SendMessage(ctx, a.ID, "a", "A", "ping")

	items, err := svc.ListForUser(ctx, "me")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, b.ID, items[1].ID)
}

func TestPreview_TruncatesLongContent(t *testing.T) {
	long := strings.Repeat("ñ", previewLen+10)
	p := preview(long)
	assert.Equal(t, previewLen+1, len([]rune(p)))
	assert.Equal(t, "corto", preview("corto"))
}

// flakyRepo falla una sola vez Update o CreateMessage para la conversación indicada.
type flakyRepo struct {
	*testRepo
	failUpdateFor  string
	failCreateFor  string
	updateFailures int
	createFailures int
}

func (r *flakyRepo) Update(ctx context.Context, c Conversation) error {
	if c.ID == r.failUpdateFor && r.updateFailures == 0 {
		r.updateFailures++
		return errors.New("summary write timeout")
	}
	return r.testRepo.Update(ctx, c)
}

func (r *flakyRepo) CreateMessage(ctx context.Context, m Message) error {
	if m.ConversationID == r.failCreateFor && r.createFailures == 0 {
		r.createFailures++
		return errors.New("message write timeout")
	}
	return r.testRepo.CreateMessage(ctx, m)
}

func TestSendMessage_SummaryFailureStillReturnsStoredMessage(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()
	c, _, _ := svc.GetOrCreate(ctx, "owner", "adopter", "pet-1", "")

	flaky := &flakyRepo{testRepo: repo, failUpdateFor: c.ID}
	svc.repo = flaky

	m, err := svc.SendMessage(ctx, c.ID, "adopter", "Ana", "hola")
	require.NoError(t, err)
	assert.Equal(t, "hola", m.Content)
	assert.Equal(t, 1, flaky.updateFailures)

	msgs, _ := svc.ListMessages(ctx, "owner", c.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, m.ID, msgs[0].ID)
	assert.Len(t, notifier.created, 1)
}

func TestAnnouncePetRemoval_SummaryFailureCountsEveryConversationOnce(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	first, _, _ := svc.GetOrCreate(ctx, "owner", "a", "pet-1", "")
	second, _, _ := svc.GetOrCreate(ctx, "owner", "b", "pet-1", "")

	svc.repo = &flakyRepo{testRepo: repo, failUpdateFor: second.ID}

	n, err := svc.AnnouncePetRemoval(ctx, "pet-1", "Luna")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range []string{first.ID, second.ID} {
		msgs, _ := repo.ListMessages(ctx, id)
		assert.Len(t, msgs, 1, id)
	}
}

func TestAnnouncePetRemoval_RetrySkipsAlreadyAnnounced(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	first, _, _ := svc.GetOrCreate(ctx, "owner", "a", "pet-1", "")
	second, _, _ := svc.GetOrCreate(ctx, "owner", "b", "pet-1", "")

	svc.repo = &flakyRepo{testRepo: repo, failCreateFor: second.ID}

	n1, err := svc.AnnouncePetRemoval(ctx, "pet-1", "Luna")
	require.Error(t, err)

	n2, err := svc.AnnouncePetRemoval(ctx, "pet-1", "Luna")
	require.NoError(t, err)
	assert.Equal(t, 2, n1+n2, "each linked conversation counted once across attempts")

	for _, id := range []string{first.ID, second.ID} {
		msgs, _ := repo.ListMessages(ctx, id)
		require.Len(t, msgs, 1, id)
		assert.True(t, msgs[0].IsSystem())
	}

	n3, err := svc.AnnouncePetRemoval(ctx, "pet-1", "Luna")
	require.NoError(t, err)
	assert.Zero(t, n3)
}
