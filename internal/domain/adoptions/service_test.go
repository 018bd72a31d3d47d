package adoptions

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"pet-adoption-hub/internal/domain/conversations"
	"pet-adoption-hub/internal/domain/notifications"
	"pet-adoption-hub/internal/domain/pets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test doubles
// -------------------------

type testRepo struct {
	byID map[string]Request
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Request{}} }

func (r *testRepo) Create(_ context.Context, req Request) error {
	r.byID[req.ID] = req
	return nil
}

func (r *testRepo) Update(_ context.Context, req Request) error {
	if _, ok := r.byID[req.ID]; !ok {
		return ErrNotFound
	}
	r.byID[req.ID] = req
	return nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Request, error) {
	req, ok := r.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (r *testRepo) ListByRequester(_ context.Context, userID string) ([]Request, error) {
	return r.filter(func(q Request) bool { return q.RequesterUserID == userID }), nil
}

func (r *testRepo) ListByOwner(_ context.Context, ownerUserID string) ([]Request, error) {
	return r.filter(func(q Request) bool { return q.OwnerUserID == ownerUserID }), nil
}

func (r *testRepo) ListByPet(_ context.Context, petID string) ([]Request, error) {
	return r.filter(func(q Request) bool { return q.PetID == petID }), nil
}

func (r *testRepo) ListByRequesterAndPet(_ context.Context, userID, petID string) ([]Request, error) {
	return r.filter(func(q Request) bool { return q.RequesterUserID == userID && q.PetID == petID }), nil
}

func (r *testRepo) ListByStatusUpdatedBefore(_ context.Context, status Status, before time.Time) ([]Request, error) {
	return r.filter(func(q Request) bool { return q.Status == status && q.UpdatedAt.Before(before) }), nil
}

func (r *testRepo) filter(keep func(Request) bool) []Request {
	out := []Request{}
	for _, q := range r.byID {
		if keep(q) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type stubPets map[string]pets.Pet

func (s stubPets) GetByID(_ context.Context, id string) (pets.Pet, error) {
	p, ok := s[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

type fakeNotifier struct {
	created []notifications.CreateInput
	failFor map[string]bool // user id -> falla
}

func (f *fakeNotifier) Create(_ context.Context, in notifications.CreateInput) (notifications.Notification, error) {
	if f.failFor[in.UserID] {
		return notifications.Notification{}, errors.New("notification store down")
	}
	f.created = append(f.created, in)
	return notifications.Notification{ID: "n", UserID: in.UserID, Type: in.Type}, nil
}

func (f *fakeNotifier) forUser(userID string) []notifications.CreateInput {
	out := []notifications.CreateInput{}
	for _, in := range f.created {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out
}

type fakeConversations struct {
	calls [][4]string
}

func (f *fakeConversations) GetOrCreate(_ context.Context, a, b, petID, reqID string) (conversations.Conversation, bool, error) {
	f.calls = append(f.calls, [4]string{a, b, petID, reqID})
	return conversations.Conversation{ID: "conv-1", Participants: []string{a, b}, PetID: petID}, true, nil
}

type fixture struct {
	svc      *Service
	repo     *testRepo
	notifier *fakeNotifier
	convs    *fakeConversations
	clock    time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newTestRepo(),
		notifier: &fakeNotifier{failFor: map[string]bool{}},
		convs:    &fakeConversations{},
		clock:    time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	catalog := stubPets{
		"pet-p":     {ID: "pet-p", OwnerUserID: "owner-o", Name: "Luna", Type: "dog", Breed: "mestizo"},
		"pet-stray": {ID: "pet-stray", Name: "Callejero", Type: "cat"},
	}
	f.svc = NewService(f.repo, catalog, f.notifier, f.convs)
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	return f
}

func (f *fixture) submit(t *testing.T, requester, petID string) Request {
	t.Helper()
	req, err := f.svc.Submit(context.Background(), requester, SubmitInput{
		PetID:        petID,
		AdopterName:  "Ana",
		AdopterEmail: "ana@example.com",
		Message:      "Tengo patio",
	})
	require.NoError(t, err)
	return req
}

// -------------------------
// Tests
// -------------------------

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusApproved, StatusRejected, StatusCompleted}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusApproved}:   true,
		{StatusPending, StatusRejected}:   true,
		{StatusApproved, StatusCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

// Scenario A
func TestSubmit_CreatesPendingAndNotifiesBothParties(t *testing.T) {
	f := newFixture()
	req := f.submit(t, "user-u", "pet-p")

	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, "owner-o", req.OwnerUserID)
	assert.Equal(t, "Luna", req.Pet.Name)

	mine := f.notifier.forUser("user-u")
	require.Len(t, mine, 1)
	assert.Equal(t, notifications.TypeAdoption, mine[0].Type)
	assert.Equal(t, req.ID, mine[0].Links.AdoptionRequestID)

	owner := f.notifier.forUser("owner-o")
	require.Len(t, owner, 1)
	assert.Equal(t, notifications.TypeAdoptionRequest, owner[0].Type)
	assert.Equal(t, "user-u", owner[0].Links.AdopterID)
	assert.Equal(t, "pet-p", owner[0].Links.PetID)
}

func TestSubmit_OwnerlessPetOnlyNotifiesRequester(t *testing.T) {
	f := newFixture()
	f.submit(t, "user-u", "pet-stray")

	assert.Len(t, f.notifier.created, 1)
	assert.Equal(t, "user-u", f.notifier.created[0].UserID)
}

func TestSubmit_NotificationFailureDoesNotRollBack(t *testing.T) {
	f := newFixture()
	f.notifier.failFor["owner-o"] = true

	req := f.submit(t, "user-u", "pet-p")
	assert.Contains(t, f.repo.byID, req.ID)
}

func TestSubmit_Guards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "owner-o", SubmitInput{PetID: "pet-p", AdopterName: "O", AdopterEmail: "o@example.com"})
	assert.ErrorIs(t, err, ErrForbidden, "self adoption")

	_, err = f.svc.Submit(ctx, "user-u", SubmitInput{PetID: "missing", AdopterName: "A", AdopterEmail: "a@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Submit(ctx, "user-u", SubmitInput{PetID: "pet-p", AdopterEmail: "a@example.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Submit(ctx, "user-u", SubmitInput{PetID: "pet-p", AdopterName: "A"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Submit(ctx, "user-u", SubmitInput{PetID: "pet-p", AdopterName: "A", AdopterEmail: "nope"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, f.repo.byID)
}

func TestSubmit_RefusesSecondActiveRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.submit(t, "user-u", "pet-p")

	_, err := f.svc.Submit(ctx, "user-u", SubmitInput{PetID: "pet-p", AdopterName: "A", AdopterEmail: "a@example.com"})
	assert.ErrorIs(t, err, ErrBadState)

	_, err = f.svc.Reject(ctx, "owner-o", first.ID, "")
	require.NoError(t, err)

	f.submit(t, "user-u", "pet-p")
}

// Scenario B
func TestApproveThenComplete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.submit(t, "user-u", "pet-p")

	approved, err := f.svc.Approve(ctx, "owner-o", req.ID, "welcome!")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "welcome!", approved.OwnerNotes)
	assert.True(t, approved.UpdatedAt.After(req.UpdatedAt))

	require.Len(t, f.convs.calls, 1)
	assert.Equal(t, [4]string{"owner-o", "user-u", "pet-p", req.ID}, f.convs.calls[0])

	mine := f.notifier.forUser("user-u")
	require.Len(t, mine, 2)
	assert.Equal(t, notifications.TypeApproval, mine[1].Type)
	assert.Equal(t, "conv-1", mine[1].Links.ConversationID)

	completed, err := f.svc.Complete(ctx, "owner-o", req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)
	assert.Equal(t, "welcome!", completed.OwnerNotes)

	_, err = f.svc.Approve(ctx, "owner-o", req.ID, "")
	assert.ErrorIs(t, err, ErrBadState)
	_, err = f.svc.Reject(ctx, "owner-o", req.ID, "")
	assert.ErrorIs(t, err, ErrBadState)

	assert.Equal(t, StatusCompleted, f.repo.byID[req.ID].Status)
}

func TestInvalidTransitionsLeaveStatusUnchanged(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pending := f.submit(t, "user-u", "pet-p")
	_, err := f.svc.Complete(ctx, "owner-o", pending.ID)
	assert.ErrorIs(t, err, ErrBadState)
	assert.Equal(t, StatusPending, f.repo.byID[pending.ID].Status)

	_, err = f.svc.Reject(ctx, "owner-o", pending.ID, "no")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, "owner-o", pending.ID, "")
	assert.ErrorIs(t, err, ErrBadState)
	assert.Equal(t, StatusRejected, f.repo.byID[pending.ID].Status)
	assert.Equal(t, "no", f.repo.byID[pending.ID].OwnerNotes)
}

// Scenario D
func TestApprove_NonOwnerIsForbiddenAndNothingIsWritten(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.submit(t, "user-u", "pet-p")
	before := f.repo.byID[req.ID]
	notified := len(f.notifier.created)

	_, err := f.svc.Approve(ctx, "intruder-x", req.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	// El solicitante tampoco puede aprobarse a sí mismo.
	_, err = f.svc.Approve(ctx, "user-u", req.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Equal(t, before, f.repo.byID[req.ID])
	assert.Len(t, f.notifier.created, notified)
	assert.Empty(t, f.convs.calls)
}

func TestHasActiveRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	active, err := f.svc.HasActiveRequest(ctx, "user-u", "pet-p")
	require.NoError(t, err)
	assert.False(t, active)

	req := f.submit(t, "user-u", "pet-p")
	active, _ = f.svc.HasActiveRequest(ctx, "user-u", "pet-p")
	assert.True(t, active)

	_, _ = f.svc.Approve(ctx, "owner-o", req.ID, "")
	active, _ = f.svc.HasActiveRequest(ctx, "user-u", "pet-p")
	assert.True(t, active, "approved still counts")

	_, _ = f.svc.Complete(ctx, "owner-o", req.ID)
	active, _ = f.svc.HasActiveRequest(ctx, "user-u", "pet-p")
	assert.False(t, active)
}

func TestListsAndGetVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.submit(t, "user-u", "pet-p")
	second := f.submit(t, "user-u", "pet-stray")

	mine, err := f.svc.ListForRequester(ctx, "user-u")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	received, err := f.svc.ListForOwner(ctx, "owner-o")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, first.ID, received[0].ID)

	_, err = f.svc.Get(ctx, "owner-o", first.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, "stranger", first.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPurgeOldRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	old := f.submit(t, "user-u", "pet-p")
	_, _ = f.svc.Reject(ctx, "owner-o", old.ID, "")

	f.clock = f.clock.AddDate(0, 0, 40)
	recent := f.submit(t, "user-v", "pet-p")
	_, _ = f.svc.Reject(ctx, "owner-o", recent.ID, "")
	stillPending := f.submit(t, "user-w", "pet-p")

	_, err := f.svc.PurgeOldRejected(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	n, err := f.svc.PurgeOldRejected(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, f.repo.byID, old.ID)
	assert.Contains(t, f.repo.byID, recent.ID)
	assert.Contains(t, f.repo.byID, stillPending.ID)
}

func TestDeleteByPet(t *testing.T) {
	f := newFixture()
	f.submit(t, "user-u", "pet-p")
	f.submit(t, "user-v", "pet-p")
	other := f.submit(t, "user-u", "pet-stray")

	n, err := f.svc.DeleteByPet(context.Background(), "pet-p")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.repo.byID, 1)
	assert.Contains(t, f.repo.byID, other.ID)
}
