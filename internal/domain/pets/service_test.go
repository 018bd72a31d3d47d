package pets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test doubles
// -------------------------

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Pet{}} }

func (r *testRepo) Create(_ context.Context, p Pet) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(_ context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByOwner(_ context.Context, ownerUserID string) ([]Pet, error) {
	return r.filter(func(p Pet) bool { return p.OwnerUserID == ownerUserID }), nil
}

func (r *testRepo) ListByShelter(_ context.Context, shelterID string) ([]Pet, error) {
	return r.filter(func(p Pet) bool { return p.ShelterID == shelterID }), nil
}

func (r *testRepo) List(_ context.Context, f ListFilter) ([]Pet, error) {
	return r.filter(func(p Pet) bool {
		return (f.Status == "" || p.Status == f.Status) &&
			(f.Type == "" || p.Type == f.Type) &&
			(f.Location == "" || p.Location == f.Location)
	}), nil
}

func (r *testRepo) filter(keep func(Pet) bool) []Pet {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type stubShelters map[string][2]string // id -> {owner, name}

func (s stubShelters) OwnerAndName(_ context.Context, id string) (string, string, error) {
	v, ok := s[id]
	if !ok {
		return "", "", ErrNotFound
	}
	return v[0], v[1], nil
}

type stubBlob struct {
	puts    []string
	removed []string
}

func (b *stubBlob) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	b.puts = append(b.puts, key)
	return "http://blob.local/pets-bucket/" + key, nil
}

func (b *stubBlob) Remove(_ context.Context, url string) error {
	b.removed = append(b.removed, url)
	return nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc, repo
}

// -------------------------
// Tests
// -------------------------

func TestCreate_DefaultsToAvailable(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: " Luna ", Type: "Dog", Location: "Lima"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Luna", p.Name)
	assert.Equal(t, "dog", p.Type)
	assert.Equal(t, StatusAvailable, p.Status)
	assert.Equal(t, "owner-1", p.OwnerUserID)
}

func TestCreate_RequiresNameAndType(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", CreateInput{Type: "dog"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, "owner-1", CreateInput{Name: "Luna"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, "", CreateInput{Name: "Luna", Type: "dog"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreate_WithShelter(t *testing.T) {
	svc, _ := newTestService()
	svc.WithShelters(stubShelters{"sh-1": {"owner-1", "Patitas"}})
	ctx := context.Background()

	p, err := svc.Create(ctx, "owner-1", CreateInput{Name: "Milo", Type: "cat", ShelterID: "sh-1"})
	require.NoError(t, err)
	assert.Equal(t, "Patitas", p.ShelterName)

	_, err = svc.Create(ctx, "intruder", CreateInput{Name: "Milo", Type: "cat", ShelterID: "sh-1"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, "owner-1", CreateInput{Name: "Milo", Type: "cat", ShelterID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAvailable_FiltersStatusTypeAndLocation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	dog, _ := svc.Create(ctx, "o", CreateInput{Name: "A", Type: "dog", Location: "Lima"})
	_, _ = svc.Create(ctx, "o", CreateInput{Name: "B", Type: "cat", Location: "Lima"})
	adopted, _ := svc.Create(ctx, "o", CreateInput{Name: "C", Type: "dog", Location: "Lima"})

	st := StatusAdopted
	_, err := svc.Update(ctx, "o", adopted.ID, UpdateInput{Status: &st})
	require.NoError(t, err)

	items, err := svc.ListAvailable(ctx, ListFilter{Type: "DOG", Location: "Lima", Status: StatusAdopted})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, dog.ID, items[0].ID)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, "owner-1", CreateInput{Name: "Luna", Type: "dog"})

	name := "Intruder"
	_, err := svc.Update(ctx, "someone-else", p.ID, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Luna", repo.byID[p.ID].Name)

	name = "Luna II"
	breed := " mestizo "
	updated, err := svc.Update(ctx, "owner-1", p.ID, UpdateInput{Name: &name, Breed: &breed})
	require.NoError(t, err)
	assert.Equal(t, "Luna II", updated.Name)
	assert.Equal(t, "mestizo", updated.Breed)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
}

func TestUpdate_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, "owner-1", CreateInput{Name: "Luna", Type: "dog"})

	bad := Status("sold")
	_, err := svc.Update(ctx, "owner-1", p.ID, UpdateInput{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetImage(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, "owner-1", CreateInput{Name: "Luna", Type: "dog"})

	_, err := svc.SetImage(ctx, "owner-1", p.ID, "a.png", "image/png", bytes.NewReader([]byte("x")), 1)
	assert.True(t, errors.Is(err, ErrImagesDisabled))

	store := &stubBlob{}
	svc.WithImages(store)

	_, err = svc.SetImage(ctx, "owner-1", p.ID, "a.txt", "text/plain", bytes.NewReader([]byte("x")), 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	first, err := svc.SetImage(ctx, "owner-1", p.ID, "a.PNG", "image/png", bytes.NewReader([]byte("x")), 1)
	require.NoError(t, err)
	assert.Contains(t, first.ImageURL, "pets/"+p.ID+"/")
	assert.Contains(t, first.ImageURL, ".png")

	second, err := svc.SetImage(ctx, "owner-1", p.ID, "b.jpg", "image/jpeg", bytes.NewReader([]byte("y")), 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ImageURL, second.ImageURL)
	assert.Equal(t, []string{first.ImageURL}, store.removed)
}

func TestRemove(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, "owner-1", CreateInput{Name: "Luna", Type: "dog"})

	_, err := svc.Remove(ctx, "other", p.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, repo.byID, p.ID)

	removed, err := svc.Remove(ctx, "owner-1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, removed.ID)

	_, err = svc.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	owner, err := svc.OwnerOf(ctx, p.ID)
	assert.Error(t, err)
	assert.Empty(t, owner)
}
