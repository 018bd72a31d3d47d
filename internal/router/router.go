package router

import (
	"database/sql"
	"net/http"
	"time"

	rediscache "pet-adoption-hub/internal/adapters/cache/redis"
	mem "pet-adoption-hub/internal/adapters/storage/memory"
	pg "pet-adoption-hub/internal/adapters/storage/postgres"
	_ "pet-adoption-hub/internal/docs"
	"pet-adoption-hub/internal/domain/adoptions"
	"pet-adoption-hub/internal/domain/conversations"
	"pet-adoption-hub/internal/domain/favorites"
	"pet-adoption-hub/internal/domain/notifications"
	"pet-adoption-hub/internal/domain/petremoval"
	"pet-adoption-hub/internal/domain/pets"
	"pet-adoption-hub/internal/domain/shelters"
	"pet-adoption-hub/internal/middleware"
	"pet-adoption-hub/internal/platform/logger"
	"pet-adoption-hub/internal/platform/metrics"
	"pet-adoption-hub/internal/ports/auth"
	"pet-adoption-hub/internal/ports/blob"
	"pet-adoption-hub/internal/ports/events"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: cache read-through de mascotas.
	Redis    *goredis.Client
	RedisTTL time.Duration

	Publisher events.Publisher // nil => eventos descartados
	Blob      blob.Store       // nil => subida de imágenes deshabilitada
	Metrics   *metrics.Metrics // nil => sin /metrics
	Logger    logger.Logger

	AdminUserIDs []string

	// Backoff entre reintentos del cascade al borrar una mascota. 0 => default del servicio.
	CascadeBackoff time.Duration
}

// Services expone lo que main necesita fuera de HTTP (job de retención).
type Services struct {
	Pets          *pets.Service
	Shelters      *shelters.Service
	Adoptions     *adoptions.Service
	Notifications *notifications.Service
	Conversations *conversations.Service
	Favorites     *favorites.Service
	PetRemoval    *petremoval.Service
}

type repos struct {
	pets          pets.Repository
	shelters      shelters.Repository
	adoptions     adoptions.Repository
	notifications notifications.Repository
	conversations conversations.Repository
	favorites     favorites.Repository
}

func newRepos(opts Options) repos {
	var rs repos
	if opts.DB != nil {
		rs = repos{
			pets:          pg.NewPetsRepo(opts.DB),
			shelters:      pg.NewSheltersRepo(opts.DB),
			adoptions:     pg.NewAdoptionsRepo(opts.DB),
			notifications: pg.NewNotificationsRepo(opts.DB),
			conversations: pg.NewConversationsRepo(opts.DB),
			favorites:     pg.NewFavoritesRepo(opts.DB),
		}
	} else {
		rs = repos{
			pets:          mem.NewPetRepo(),
			shelters:      mem.NewShelterRepo(),
			adoptions:     mem.NewAdoptionRepo(),
			notifications: mem.NewNotificationRepo(),
			conversations: mem.NewConversationRepo(),
			favorites:     mem.NewFavoriteRepo(),
		}
	}

	if opts.Redis != nil {
		rs.pets = rediscache.NewPetRepo(rs.pets, opts.Redis, opts.RedisTTL, opts.Logger)
	}
	return rs
}

// NewServices arma los servicios por módulo y sus dependencias cruzadas.
func NewServices(opts Options) *Services {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	rs := newRepos(opts)

	sheltersSvc := shelters.NewService(rs.shelters)
	petsSvc := pets.NewService(rs.pets).WithShelters(sheltersSvc)
	if opts.Blob != nil {
		petsSvc.WithImages(opts.Blob)
	}

	notificationsSvc := notifications.NewService(rs.notifications).
		WithPublisher(opts.Publisher).
		WithMetrics(opts.Metrics).
		WithLogger(log)
	conversationsSvc := conversations.NewService(rs.conversations, notificationsSvc).
		WithLogger(log)
	favoritesSvc := favorites.NewService(rs.favorites, petsSvc)
	adoptionsSvc := adoptions.NewService(rs.adoptions, petsSvc, notificationsSvc, conversationsSvc).
		WithPublisher(opts.Publisher).
		WithMetrics(opts.Metrics).
		WithLogger(log)

	removalSvc := petremoval.NewService(petsSvc, adoptionsSvc, notificationsSvc, favoritesSvc, conversationsSvc).
		WithRetry(0, opts.CascadeBackoff).
		WithPublisher(opts.Publisher).
		WithMetrics(opts.Metrics).
		WithLogger(log)

	return &Services{
		Pets:          petsSvc,
		Shelters:      sheltersSvc,
		Adoptions:     adoptionsSvc,
		Notifications: notificationsSvc,
		Conversations: conversationsSvc,
		Favorites:     favoritesSvc,
		PetRemoval:    removalSvc,
	}
}

func NewRouter(opts Options) http.Handler {
	h, _ := Build(opts)
	return h
}

// Build devuelve el handler HTTP y los servicios que lo respaldan.
func Build(opts Options) (http.Handler, *Services) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	svcs := NewServices(opts)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(opts.Metrics.Middleware)

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	adminOnly := middleware.AdminOnly(opts.AdminUserIDs)

	// Rutas por módulo
	pets.RegisterRoutes(r, svcs.Pets)
	petremoval.RegisterRoutes(r, svcs.PetRemoval)
	shelters.RegisterRoutes(r, svcs.Shelters, adminOnly)
	adoptions.RegisterRoutes(r, svcs.Adoptions, adminOnly)
	notifications.RegisterRoutes(r, svcs.Notifications)
	conversations.RegisterRoutes(r, svcs.Conversations)
	favorites.RegisterRoutes(r, svcs.Favorites)

	return r, svcs
}
