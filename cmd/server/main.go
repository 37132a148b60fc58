package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	assets "github.com/jhalttu/textpipe"
	"github.com/jhalttu/textpipe/internal"
	"github.com/jhalttu/textpipe/internal/awsml"
	"github.com/jhalttu/textpipe/internal/handler"
	"github.com/jhalttu/textpipe/internal/security"
	"github.com/jhalttu/textpipe/internal/service"
	"github.com/jhalttu/textpipe/internal/settings"
	"github.com/jhalttu/textpipe/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "modernc.org/sqlite"
)

func main() {
	internal.InitializeConfiguration()
	settings.ReadDotenv(internal.DotEnvPath)
	settings.Settings = settings.NewSettings()
	hashKey, blockKey := security.NewKeys()

	rdb, rwdb, dialect := openDatabases()
	defer rdb.Close()
	defer rwdb.Close()
	store.RunMigrations(rwdb, dialect)

	scheduler := service.NewScheduler()
	defer scheduler.Shutdown()

	awsClient, err := awsml.New(
		context.Background(),
		awsml.WithRegion(settings.Settings.AWSRegion),
	)
	if err != nil {
		log.Fatal(err)
	}

	userStore := store.NewUserSQLiteStore(rdb, rwdb)
	credentialStore := store.NewCredentialSQLiteStore(rdb, rwdb)
	dataSourceStore := store.NewDataSourceSQLiteStore(rdb, rwdb)
	pipelineStore := store.NewPipelineSQLiteStore(rdb, rwdb)
	executionStore := store.NewExecutionSQLiteStore(rdb, rwdb)
	apiKeyStore := store.NewAPIKeySQLiteStore(rdb, rwdb)
	aesEncrypter := security.NewAESEncrypter([]byte(os.Getenv("TEXTPIPE_HASH_KEY")))

	cookieSvc := service.NewCookieService(hashKey, blockKey)
	userSvc := service.NewUserService(userStore)
	credentialSvc := service.NewCredentialService(credentialStore, aesEncrypter)
	dataSourceSvc := service.NewDataSourceService(dataSourceStore, credentialSvc)
	ingestSvc := service.NewIngestService(dataSourceStore, credentialSvc, awsClient)
	apiKeySvc := service.NewAPIKeyService(apiKeyStore, service.NewUUIDGen())
	profileSvc := service.NewProfileService(awsClient)
	pipelineSvc := service.NewPipelineService(
		pipelineStore,
		executionStore,
		apiKeyStore,
		awsClient,
		scheduler,
	)
	if err := pipelineSvc.InitializeExecutionQueues(context.Background()); err != nil {
		log.Fatal(err)
	}
	if err := pipelineSvc.InitializeSchedules(context.Background()); err != nil {
		log.Fatal(err)
	}

	userSvc.InitializeSuperuser(context.Background())

	store.Guard = store.NewTriggerGuard()
	store.Guard.ScheduleDailyCleanUp(scheduler)
	scheduler.Start()

	e := setupEcho()
	g := e.Group("", handler.SessionMiddleware(userSvc, cookieSvc))
	handler.SetupAuthRoutes(g, userSvc, cookieSvc)
	handler.SetupConfigRoutes(g)
	handler.SetupUserRoutes(g, userSvc, cookieSvc)
	handler.SetupCredentialRoutes(g, credentialSvc)
	handler.SetupDataSourceRoutes(g, dataSourceSvc, ingestSvc)
	handler.SetupPipelineRoutes(g, pipelineSvc)
	handler.SetupAPIKeyRoutes(g, apiKeySvc)
	handler.SetupProfileRoutes(g, profileSvc)

	internal.GracefulShutdown(e, settings.Settings.Port)
}

func openDatabases() (rdb, rwdb *sql.DB, dialect string) {
	if dsn := settings.Settings.PostgresDSN; dsn != "" {
		db := store.InitPostgresDatabase(dsn)
		return db, db, "postgres"
	}
	return store.InitDatabase(true), store.InitDatabase(false), "sqlite3"
}

func setupEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(
		middleware.CORSWithConfig(internal.GetCORSConfig()),
		middleware.RateLimiterWithConfig(internal.GetRateLimiterConfig()),
	)

	publicFS := echo.MustSubFS(assets.PublicFS, internal.PublicDir)
	e.StaticFS("/", publicFS)
	e.GET("/favicon.ico", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/favicon.svg")
	})

	return e
}
