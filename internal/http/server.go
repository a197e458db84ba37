package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/config"
	"campus-access-backend/internal/health"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store"
)

type Server struct {
	Config       config.Config
	Tokens       services.TokenService
	Auth         services.AuthService
	Users        services.UserService
	Students     services.StudentService
	Professors   services.ProfessorService
	Rooms        services.RoomService
	Reservations services.ReservationService
	Cards        services.CardService
	Access       services.AccessService
	Hub          *services.AccessLogHub
	Health       health.Checker

	registry *prometheus.Registry
	validate *validator.Validate
}

// Deps are the long-lived collaborators owned by the process entry point.
type Deps struct {
	Store    store.Store
	Clock    clock.Clock
	Limiter  services.LoginLimiter
	Hub      *services.AccessLogHub
	Registry *prometheus.Registry
	Health   health.Checker
}

func NewServer(cfg config.Config, deps Deps) *Server {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	instruments := services.NewInstruments(reg)
	tokens := services.TokenService{
		Secret:    []byte(cfg.JWTSecret),
		Issuer:    cfg.JWTIssuer,
		AccessTTL: cfg.AccessTTL(),
		Clock:     clk,
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = services.NoopLimiter{}
	}
	checker := deps.Health
	if checker.DB == nil {
		checker.DB = deps.Store
	}
	srv := &Server{
		Config:       cfg,
		Tokens:       tokens,
		Auth:         services.AuthService{Store: deps.Store, Tokens: tokens, Limiter: limiter},
		Users:        services.UserService{Store: deps.Store, Tokens: tokens, Clock: clk},
		Students:     services.StudentService{Store: deps.Store, Clock: clk},
		Professors:   services.ProfessorService{Store: deps.Store, Clock: clk},
		Rooms:        services.RoomService{Store: deps.Store, Clock: clk},
		Reservations: services.ReservationService{Store: deps.Store, Clock: clk, Metrics: instruments},
		Cards:        services.CardService{Store: deps.Store, Clock: clk},
		Access:       services.AccessService{Store: deps.Store, Clock: clk, Metrics: instruments},
		Hub:          deps.Hub,
		Health:       checker,
		registry:     reg,
		validate:     newValidator(),
	}
	if deps.Hub != nil {
		srv.Access.Publisher = deps.Hub
	}
	return srv
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.Liveness)
	r.Get("/health/detailed", s.DetailedHealth)
	r.Get("/ready", s.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/ws/access-logs", s.AccessLogSocket)

	admin := s.RequireRole(models.RoleAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/login", s.Login)

		api.Group(func(authed chi.Router) {
			authed.Use(s.WithAuth)
			authed.Post("/auth/logout", s.Logout)
			authed.Get("/auth/me", s.Me)

			authed.Route("/users", func(users chi.Router) {
				users.Use(admin)
				users.Get("/", s.ListUsers)
				users.Post("/", s.CreateUser)
				users.Get("/{userId}", s.GetUser)
				users.Put("/{userId}", s.UpdateUser)
				users.Delete("/{userId}", s.DeleteUser)
				users.Get("/{userId}/roles", s.ListUserRoles)
				users.Post("/{userId}/roles", s.AssignRole)
				users.Delete("/{userId}/roles/{role}", s.RemoveRole)
			})

			authed.Route("/students", func(students chi.Router) {
				students.Get("/", s.ListStudents)
				students.Get("/stats/summary", s.StudentStats)
				students.Get("/user/{userId}", s.StudentByUser)
				students.Get("/class/{className}", s.StudentsByClass)
				students.Get("/{studentId}", s.GetStudent)
				students.With(admin).Post("/", s.CreateStudent)
				students.With(admin).Put("/{studentId}", s.UpdateStudent)
				students.With(admin).Delete("/{studentId}", s.DeleteStudent)
			})

			authed.Route("/professors", func(professors chi.Router) {
				professors.Get("/", s.ListProfessors)
				professors.Get("/stats/summary", s.ProfessorStats)
				professors.Get("/user/{userId}", s.ProfessorByUser)
				professors.Get("/department/{department}", s.ProfessorsByDepartment)
				professors.Get("/{professorId}", s.GetProfessor)
				professors.With(admin).Post("/", s.CreateProfessor)
				professors.With(admin).Put("/{professorId}", s.UpdateProfessor)
				professors.With(admin).Delete("/{professorId}", s.DeleteProfessor)
			})

			authed.Route("/rooms", func(rooms chi.Router) {
				rooms.Get("/", s.ListRooms)
				rooms.Get("/stats/summary", s.RoomStats)
				rooms.Get("/location/{location}", s.RoomsByLocation)
				rooms.Get("/capacity/{minCapacity}", s.RoomsByCapacity)
				rooms.Get("/{roomId}", s.GetRoom)
				rooms.With(admin).Post("/", s.CreateRoom)
				rooms.With(admin).Put("/{roomId}", s.UpdateRoom)
				rooms.With(admin).Delete("/{roomId}", s.DeleteRoom)
			})

			authed.Route("/reservations", func(res chi.Router) {
				res.Get("/", s.ListReservations)
				res.Post("/", s.CreateReservation)
				res.Get("/stats/summary", s.ReservationStats)
				res.Get("/room/{roomId}", s.ReservationsByRoom)
				res.Get("/room/{roomId}/availability", s.RoomAvailability)
				res.Get("/user/{userId}", s.ReservationsByUser)
				res.Get("/{reservationId}", s.GetReservation)
				res.Put("/{reservationId}", s.UpdateReservation)
				res.Delete("/{reservationId}", s.DeleteReservation)
			})

			authed.Route("/access-cards", func(cards chi.Router) {
				cards.Get("/", s.ListCards)
				cards.Get("/user/{userId}", s.CardsByUser)
				cards.Get("/{cardId}", s.GetCard)
				cards.With(admin).Post("/", s.CreateCard)
				cards.With(admin).Put("/{cardId}", s.UpdateCard)
				cards.With(admin).Put("/{cardId}/status", s.SetCardStatus)
				cards.With(admin).Delete("/{cardId}", s.DeleteCard)
			})

			authed.Route("/access-logs", func(logs chi.Router) {
				logs.Get("/", s.ListAccessLogs)
				logs.Post("/simulate-access", s.SimulateAccess)
				logs.With(admin).Post("/", s.RecordAccess)
				logs.Get("/stats/summary", s.AccessStats)
				logs.Get("/card/{cardId}", s.AccessLogsByCard)
				logs.Get("/user/{userId}", s.AccessLogsByUser)
				logs.Get("/location/{location}", s.AccessLogsByLocation)
				logs.Get("/{logId}", s.GetAccessLog)
			})
		})
	})
	return r
}
