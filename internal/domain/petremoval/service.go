package petremoval

import (
	"context"
	"fmt"
	"time"

	"pet-adoption-hub/internal/domain/pets"
	"pet-adoption-hub/internal/platform/logger"
	"pet-adoption-hub/internal/platform/metrics"
	"pet-adoption-hub/internal/ports/events"

	"github.com/sethvargo/go-retry"
)

const (
	CategoryAdoptionRequests = "adoption_requests"
	CategoryNotifications    = "notifications"
	CategoryFavorites        = "favorites"
	CategoryConversations    = "conversations"
)

type PetRemover interface {
	Remove(ctx context.Context, callerID, petID string) (pets.Pet, error)
	DiscardImage(ctx context.Context, imageURL string) error
}

// ByPetDeleter borra los registros que referencian a la mascota y devuelve cuántos.
type ByPetDeleter interface {
	DeleteByPet(ctx context.Context, petID string) (int, error)
}

type RemovalAnnouncer interface {
	AnnouncePetRemoval(ctx context.Context, petID, petName string) (int, error)
}

type Deleted struct {
	AdoptionRequests int `json:"adoption_requests"`
	Notifications    int `json:"notifications"`
	Favorites        int `json:"favorites"`
	Conversations    int `json:"conversations"`
}

// Summary de un borrado. Failed lista las categorías que no se pudieron limpiar.
type Summary struct {
	PetID   string
	Deleted Deleted
	Failed  []string
}

// PetDeletedEvent es el payload de pets.deleted.
type PetDeletedEvent struct {
	PetID       string    `json:"pet_id"`
	OwnerUserID string    `json:"owner_user_id"`
	Deleted     Deleted   `json:"deleted"`
	Failed      []string  `json:"failed,omitempty"`
	At          time.Time `json:"at"`
}

type Service struct {
	pets          PetRemover
	adoptions     ByPetDeleter
	notifications ByPetDeleter
	favorites     ByPetDeleter
	conversations RemovalAnnouncer

	attempts uint64
	backoff  time.Duration

	publisher events.Publisher
	metrics   *metrics.Metrics
	log       logger.Logger
	now       func() time.Time
}

func NewService(p PetRemover, adoptions, notifications, favorites ByPetDeleter, convs RemovalAnnouncer) *Service {
	return &Service{
		pets:          p,
		adoptions:     adoptions,
		notifications: notifications,
		favorites:     favorites,
		conversations: convs,
		attempts:      3,
		backoff:       200 * time.Millisecond,
		publisher:     events.Nop{},
		log:           logger.NewNop(),
		now:           time.Now,
	}
}

// WithRetry ajusta los intentos por categoría (incluye el primero) y la espera entre ellos.
func (s *Service) WithRetry(attempts int, backoff time.Duration) *Service {
	if attempts > 0 {
		s.attempts = uint64(attempts)
	}
	if backoff > 0 {
		s.backoff = backoff
	}
	return s
}

func (s *Service) WithPublisher(p events.Publisher) *Service {
	if p != nil {
		s.publisher = p
	}
	return s
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) WithLogger(l logger.Logger) *Service {
	if l != nil {
		s.log = l.With(map[string]any{"module": "petremoval"})
	}
	return s
}

// DeletePet borra la mascota y después limpia cada categoría dependiente por separado.
// Si falla el borrado de la mascota no se toca nada más. Un fallo en una categoría
// queda en Summary.Failed y no frena las demás.
func (s *Service) DeletePet(ctx context.Context, callerID, petID string) (Summary, error) {
	pet, err := s.pets.Remove(ctx, callerID, petID)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{PetID: pet.ID}
	sum.Deleted.AdoptionRequests = s.step(ctx, &sum, CategoryAdoptionRequests, func(ctx context.Context) (int, error) {
		return s.adoptions.DeleteByPet(ctx, pet.ID)
	})
	sum.Deleted.Notifications = s.step(ctx, &sum, CategoryNotifications, func(ctx context.Context) (int, error) {
		return s.notifications.DeleteByPet(ctx, pet.ID)
	})
	sum.Deleted.Favorites = s.step(ctx, &sum, CategoryFavorites, func(ctx context.Context) (int, error) {
		return s.favorites.DeleteByPet(ctx, pet.ID)
	})
	sum.Deleted.Conversations = s.step(ctx, &sum, CategoryConversations, func(ctx context.Context) (int, error) {
		return s.conversations.AnnouncePetRemoval(ctx, pet.ID, pet.Name)
	})

	if err := s.pets.DiscardImage(ctx, pet.ImageURL); err != nil {
		s.log.Warn("discard pet image failed", map[string]any{"pet_id": pet.ID, "error": err})
	}

	if err := s.publisher.Publish(ctx, events.SubjectPetDeleted, PetDeletedEvent{
		PetID:       pet.ID,
		OwnerUserID: pet.OwnerUserID,
		Deleted:     sum.Deleted,
		Failed:      sum.Failed,
		At:          s.now(),
	}); err != nil {
		s.log.Warn("publish pet deleted failed", map[string]any{"pet_id": pet.ID, "error": err})
	}

	s.log.Info("pet deleted", map[string]any{
		"pet_id":            pet.ID,
		"adoption_requests": sum.Deleted.AdoptionRequests,
		"notifications":     sum.Deleted.Notifications,
		"favorites":         sum.Deleted.Favorites,
		"conversations":     sum.Deleted.Conversations,
		"failed":            sum.Failed,
	})
	return sum, nil
}

// step reintenta fn con backoff constante. El conteo se acumula entre intentos
// porque un intento fallido puede haber borrado parte de los registros: fn debe
// devolver solo lo que procesó en ese intento.
func (s *Service) step(ctx context.Context, sum *Summary, category string, fn func(context.Context) (int, error)) int {
	total := 0
	b := retry.WithMaxRetries(s.attempts-1, retry.NewConstant(s.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		n, err := fn(ctx)
		total += n
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%s: %w", category, err))
		}
		return nil
	})

	s.metrics.CascadeDeleted(category, total)
	if err != nil {
		s.metrics.CascadeFailed(category)
		sum.Failed = append(sum.Failed, category)
		s.log.Error("cascade step failed", map[string]any{
			"pet_id":   sum.PetID,
			"category": category,
			"deleted":  total,
			"error":    err,
		})
	}
	return total
}
