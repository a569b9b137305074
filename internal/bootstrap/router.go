package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/telecare-health/telecare-backend/internal/api/http"
	"github.com/telecare-health/telecare-backend/internal/api/http/middleware"
	appthttp "github.com/telecare-health/telecare-backend/internal/appointments/http"
	apptservice "github.com/telecare-health/telecare-backend/internal/appointments/service"
	dochttp "github.com/telecare-health/telecare-backend/internal/documents/http"
	docservice "github.com/telecare-health/telecare-backend/internal/documents/service"
	"github.com/telecare-health/telecare-backend/internal/identity"
	identitymw "github.com/telecare-health/telecare-backend/internal/identity/middleware"
	"github.com/telecare-health/telecare-backend/internal/session"
	sessionhttp "github.com/telecare-health/telecare-backend/internal/session/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Identity    *identity.FirebaseClient
	Google      *identity.GoogleSignIn
	Sessions    *session.Store
	Roles       appthttp.RoleResolver
	Cache       *apptservice.SyncCache
	Documents   *docservice.DocumentService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	limiter := middleware.NewRateLimiter(120, 30)

	// Public session routes are limited by client IP.
	public := api.Group("")
	public.Use(limiter.Middleware())
	sessionhttp.New(dep.Sessions, dep.Google).Register(public)

	// Protected routes limit after token auth so the bucket keys on the
	// verified subject, not the address.
	protected := api.Group("")
	protected.Use(identitymw.TokenAuthMiddleware(dep.Identity.AuthClient()))
	protected.Use(limiter.Middleware())

	appthttp.New(dep.Cache, dep.Roles).Register(protected)
	if dep.Documents != nil {
		dochttp.New(dep.Documents).Register(protected)
	}

	return r
}
