package main

import (
	"context"
	"log"

	"github.com/telecare-health/telecare-backend/config"
	apptrepo "github.com/telecare-health/telecare-backend/internal/appointments/repository"
	apptservice "github.com/telecare-health/telecare-backend/internal/appointments/service"
	"github.com/telecare-health/telecare-backend/internal/bootstrap"
	"github.com/telecare-health/telecare-backend/internal/database"
	docrepo "github.com/telecare-health/telecare-backend/internal/documents/repository"
	docservice "github.com/telecare-health/telecare-backend/internal/documents/service"
	"github.com/telecare-health/telecare-backend/internal/documents/storage"
	"github.com/telecare-health/telecare-backend/internal/identity"
	rolesrepo "github.com/telecare-health/telecare-backend/internal/roles/repository"
	rolesservice "github.com/telecare-health/telecare-backend/internal/roles/service"
	"github.com/telecare-health/telecare-backend/internal/session"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	dsn := database.DSN(cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)

	if err := database.RunMigrations(dsn); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	db, err := database.Open(dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: dsn})
	if err != nil {
		log.Fatalf("failed to open health pool: %v", err)
	}
	defer pool.Close()

	redisClient, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	authClient, err := identity.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("failed to initialize Firebase: %v", err)
	}
	identityClient := identity.NewFirebaseClient(authClient, cfg.Firebase.WebAPIKey, "")

	var google *identity.GoogleSignIn
	if cfg.Firebase.GoogleClientID != "" {
		google = identity.NewGoogleSignIn(identityClient, cfg.Firebase.GoogleClientID, cfg.Firebase.GoogleSecret, cfg.Firebase.GoogleRedirectURL)
	} else {
		log.Println("GOOGLE_OAUTH_CLIENT_ID not set, Google sign-in disabled")
	}

	resolver := rolesservice.NewResolver(rolesrepo.NewAssignmentRepository(db))

	sessions := session.NewStore(identityClient, resolver)
	sessions.Start(ctx)
	defer sessions.Stop()

	remote := apptservice.NewRemoteClient(cfg.RemoteStore.BaseURL)
	localCache := apptrepo.NewCacheRepository(redisClient)
	outbox := apptrepo.NewOutboxRepository(redisClient)

	cache := apptservice.NewSyncCache(remote, localCache, outbox)

	worker := apptservice.NewOutboxWorker(remote, outbox)
	worker.Start()
	defer worker.Stop()

	var documents *docservice.DocumentService
	if cfg.Storage.Bucket != "" {
		objects, err := storage.NewObjectStore(ctx, cfg.Storage.Bucket, cfg.Storage.Region)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
		documents = docservice.NewDocumentService(docrepo.NewDocumentRepository(db), objects)
	} else {
		log.Println("DOCUMENTS_BUCKET not set, document routes disabled")
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "telecare-backend",
		Version:     cfg.App.Version,
		DB:          pool,
		Redis:       redisClient,
		Identity:    identityClient,
		Google:      google,
		Sessions:    sessions,
		Roles:       resolver,
		Cache:       cache,
		Documents:   documents,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
