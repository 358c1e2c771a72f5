package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"gocabin/config"
	"gocabin/internal/pkg/cache"
	"gocabin/internal/pkg/database"
	"gocabin/internal/pkg/events"
	"gocabin/internal/pkg/logger"
	"gocabin/internal/pkg/middleware"
	"gocabin/internal/pkg/oauth"
	"gocabin/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"gocabin/internal/api/auth"
	"gocabin/internal/api/booking"
	"gocabin/internal/api/router"
	"gocabin/internal/repository/accountrepo"
	"gocabin/internal/repository/bookingrepo"
	"gocabin/internal/repository/cabinrepo"
	"gocabin/internal/repository/guestrepo"
	"gocabin/internal/service/availability"
	"gocabin/internal/service/bookingservice"
	"gocabin/internal/service/credentials"
	"gocabin/internal/service/identity"
	"gocabin/internal/service/session"
)

func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos apenas com o ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Inicialização
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Falha ao carregar configurações: %v", err)
	}
	logg := logger.NewLogger(cfg.LogLevel)
	logg.Info("Inicializando serviço GoCabin...", map[string]interface{}{"env": cfg.Environment})

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	logg.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis), opcional
	var cacheClient cache.Client
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			logg.Warn("Redis indisponível no início. Seguindo sem cache.", map[string]interface{}{"error": err.Error()})
			redisClient.Close()
		} else {
			defer redisClient.Close()
			cacheClient = redisClient
			logg.Info("Conexão Redis estabelecida.", nil)
		}
	}

	// C. Eventos (RabbitMQ), opcional
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			logg.Warn("RabbitMQ indisponível. Eventos de reserva desativados.", map[string]interface{}{"error": err.Error()})
		} else {
			publisher = amqpPublisher
			logg.Info("Publicador de eventos conectado.", map[string]interface{}{"exchange": cfg.RabbitMQExchange})
		}
	}
	defer publisher.Close()

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios
	guestRepo := guestrepo.NewGuestRepository(db, cfg.DBTimeout(), logg)
	accountRepo := accountrepo.NewAccountRepository(db, cfg.DBTimeout(), logg)
	bookingRepo := bookingrepo.NewBookingRepository(db, cfg.DBTimeout(), logg)
	cabinRepo := cabinrepo.NewCabinRepository(db, cacheClient, cfg.DBTimeout(), cfg.CacheTTL(), logg)
	logg.Debug("Repositórios inicializados.", nil)

	// B. Serviços
	identitySvc := identity.NewService(guestRepo, logg)
	bridge := session.NewBridge(identitySvc, logg)
	verifier := credentials.NewVerifier(accountRepo, identitySvc, logg)
	calculator := availability.NewCalculator(bookingRepo, logg)
	bookingSvc := bookingservice.NewService(bookingRepo, cabinRepo, calculator, publisher, logg)
	tokenSvc := token.NewService(cfg.AuthSecret, cfg.TokenExpiry())
	logg.Debug("Serviços inicializados.", nil)

	var google auth.FederatedProvider
	if cfg.GoogleEnabled() {
		google = oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		logg.Info("Login com Google habilitado.", nil)
	}

	// C. Handlers
	authHandler := auth.NewHandler(verifier, google, bridge, tokenSvc, identitySvc, logg)
	bookingHandler := booking.NewHandler(bookingSvc, logg)

	// 4. Configuração e Início do Roteador/Servidor
	deps := router.Deps{
		Auth:        authHandler,
		Booking:     bookingHandler,
		RequireAuth: middleware.NewAuthMiddleware(tokenSvc, bridge, logg),
	}
	if cacheClient != nil {
		deps.RateLimit = middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod(), logg)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		logg.Info("Servidor GoCabin ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logg.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logg.Error("Desligamento do servidor forçado.", err)
	}

	logg.Info("Servidor encerrado com sucesso.", nil)
}
