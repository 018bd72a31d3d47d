package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pet-adoption-hub/internal/domain/pets"
	"pet-adoption-hub/internal/platform/logger"

	goredis "github.com/redis/go-redis/v9"
)

const petKeyPrefix = "pet:"

// Options para armar el cliente desde config.
type Options struct {
	Address  string
	Password string
	DB       int
}

// NewClient conecta y hace ping.
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// petRepo decora un pets.Repository con cache read-through de GetByID.
// Update y Delete invalidan la entrada; los listados van directo al repo.
// Si Redis falla se loguea y se sigue contra el repo.
type petRepo struct {
	next   pets.Repository
	client *goredis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewPetRepo(next pets.Repository, client *goredis.Client, ttl time.Duration, log logger.Logger) pets.Repository {
	if log == nil {
		log = logger.NewNop()
	}
	return &petRepo{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log.With(map[string]any{"component": "pets_cache"}),
	}
}

func key(id string) string { return petKeyPrefix + id }

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	return r.next.Create(ctx, p)
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	if err := r.next.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.ID)
	return nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	switch {
	case err == nil:
		var p pets.Pet
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		r.log.Warn("corrupt cache entry", map[string]any{"pet_id": id})
	case errors.Is(err, goredis.Nil):
	default:
		r.log.Warn("cache get failed", map[string]any{"pet_id": id, "error": err})
	}

	p, err := r.next.GetByID(ctx, id)
	if err != nil {
		return pets.Pet{}, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := r.client.Set(ctx, key(id), data, r.ttl).Err(); err != nil {
			r.log.Warn("cache set failed", map[string]any{"pet_id": id, "error": err})
		}
	}
	return p, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	return r.next.ListByOwner(ctx, ownerUserID)
}

func (r *petRepo) ListByShelter(ctx context.Context, shelterID string) ([]pets.Pet, error) {
	return r.next.ListByShelter(ctx, shelterID)
}

func (r *petRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	return r.next.List(ctx, f)
}

func (r *petRepo) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		r.log.Warn("cache invalidate failed", map[string]any{"pet_id": id, "error": err})
	}
}
