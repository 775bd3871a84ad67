package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"kanbanApi/internal/config"
	aiusecase "kanbanApi/internal/modules/ai/application/usecase"
	aiinfra "kanbanApi/internal/modules/ai/infrastructure"
	aitransport "kanbanApi/internal/modules/ai/interface"
	authusecase "kanbanApi/internal/modules/auth/application/usecase"
	authtransport "kanbanApi/internal/modules/auth/interface"
	boardport "kanbanApi/internal/modules/boards/application/port"
	boardusecase "kanbanApi/internal/modules/boards/application/usecase"
	boardinfra "kanbanApi/internal/modules/boards/infrastructure"
	boardtransport "kanbanApi/internal/modules/boards/interface"
	rthandler "kanbanApi/internal/modules/realtime/application/handler"
	rtport "kanbanApi/internal/modules/realtime/application/port"
	rtusecase "kanbanApi/internal/modules/realtime/application/usecase"
	rtinfra "kanbanApi/internal/modules/realtime/infrastructure"
	rttransport "kanbanApi/internal/modules/realtime/interface"
	userport "kanbanApi/internal/modules/users/application/port"
	userusecase "kanbanApi/internal/modules/users/application/usecase"
	userinfra "kanbanApi/internal/modules/users/infrastructure"
	usertransport "kanbanApi/internal/modules/users/interface"
	"kanbanApi/internal/platform/broker"
	"kanbanApi/internal/platform/mongodb"
	"kanbanApi/internal/platform/revocation"
	"kanbanApi/internal/shared/auth"
	"kanbanApi/internal/shared/httputil"
)

// app holds the wired services shared by the serve and seed commands.
type app struct {
	cfg       *config.Config
	boardRepo boardport.BoardRepository
	users     *userusecase.UserService
	boards    *boardusecase.BoardService
	auth      *authusecase.AuthService
	tokens    *auth.TokenCodec
	closers   []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	var userRepo userport.UserRepository
	if cfg.Mongo.URI != "" {
		client, db, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Timeout)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		mongoUsers := userinfra.NewMongoUserRepository(db)
		if err := mongoUsers.EnsureIndexes(ctx); err != nil {
			slog.Warn("user index setup failed", slog.Any("error", err))
		}
		userRepo = mongoUsers
		a.boardRepo = boardinfra.NewMongoBoardRepository(db)
	} else {
		slog.Warn("MONGO_URI not set, using in-memory store")
		userRepo = userinfra.NewMemoryUserRepository()
		a.boardRepo = boardinfra.NewMemoryBoardRepository()
	}

	var revoked revocation.Store = revocation.NewMemoryStore()
	if cfg.Redis.URL != "" {
		store, err := revocation.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		revoked = store
	}

	tokens, err := auth.NewTokenCodec(cfg.Security.TokenSecret, cfg.Security.TokenTTL)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("token codec: %w", err)
	}
	a.tokens = tokens
	a.users = userusecase.NewUserService(userRepo)
	a.boards = boardusecase.NewBoardService(a.boardRepo, boardinfra.NewUserDirectory(a.users))
	a.auth = authusecase.NewAuthService(a.users, tokens, revoked)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			slog.Warn("resource close failed", slog.Any("error", err))
		}
	}
	a.closers = nil
}

// newServer builds the echo instance with every route mounted. Kafka
// consumers started here stop when ctx is cancelled.
func (a *app) newServer(ctx context.Context) (*echo.Echo, error) {
	cfg := a.cfg

	hub := rtinfra.NewHub()
	commands := rtinfra.NewCommandProcessor(hub)

	var publisher rtport.EventPublisher = broker.NewLogPublisher()
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.EventsTopic != "" {
		kp := broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		a.closers = append(a.closers, func(context.Context) error { return kp.Close() })
		publisher = kp
	}
	broadcastUC := rtusecase.NewBroadcastUseCase(hub, publisher)

	registry := rtinfra.NewHandlerRegistry()
	if cfg.Kafka.NotificationsTopic != "" {
		registry.Register(rthandler.NewNotificationHandler(cfg.Kafka.NotificationsTopic, broadcastUC))
	}
	broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID))

	var generator *aiinfra.HTTPGenerator
	if cfg.AI.BaseURL != "" {
		gen, err := aiinfra.NewHTTPGeneratorFromURL(cfg.AI.BaseURL, cfg.AI.Path, cfg.AI.APIKey, cfg.AI.Timeout)
		if err != nil {
			return nil, err
		}
		generator = gen
	}
	generateUC := aiusecase.NewGenerateBoardUseCase(nil)
	if generator != nil {
		generateUC = aiusecase.NewGenerateBoardUseCase(generator)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(httputil.RequestLogger(slog.Default()))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: true,
	}))
	if cfg.Server.Production {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  cfg.Server.PublicDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, "/api/")
			},
		}))
	}

	api := e.Group("/api", authtransport.Identify(a.auth))
	api.GET("/healthcheck", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	api.GET("/socket", rttransport.NewWebsocketHandler(hub, commands, a.tokens, cfg.Websocket.SendBuffer))

	requireAuth := authtransport.RequireAuth(a.auth, authtransport.GuestAccount{
		Enabled:  cfg.Security.GuestMode,
		Email:    cfg.Security.GuestEmail,
		Password: cfg.Security.GuestPassword,
	})
	authtransport.NewAuthHandler(a.auth).Register(api.Group("/auth"))
	usertransport.NewUserHandler(a.users).Register(api.Group("/user", requireAuth))
	boardtransport.NewBoardHandler(a.boards, broadcastUC).Register(api.Group("/board", requireAuth))
	api.POST("/ai/generateBoard", aitransport.NewGenerateBoardHandler(generateUC))

	return e, nil
}
