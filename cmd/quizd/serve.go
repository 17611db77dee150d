package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/event"
	"github.com/mind-engage/mindengage-quiz/internal/notify"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/session"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quiz web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().String("quiz-dir", "", "Quiz directory (overrides QUIZ_DIR)")
}

func serve(ctx context.Context, cfg config.Config) error {
	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db open failed: %w", err)
	}
	defer dbh.Close()

	// --- Blob storage for submission documents ---
	var bs storage.BlobStore
	switch cfg.BlobDriver {
	case "minio":
		bs, err = storage.NewMinioStore(openCtx, storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKey,
			SecretAccessKey: cfg.MinioSecretKey,
			Bucket:          cfg.MinioBucket,
			Region:          cfg.MinioRegion,
			UseSSL:          cfg.MinioUseSSL,
		})
	default:
		bs, err = storage.NewFSStore(cfg.BlobBasePath)
	}
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	// --- Sessions ---
	var store session.Store
	switch cfg.SessionDriver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(openCtx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
	default:
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	// --- Quizzes ---
	lib := quiz.NewLibrary(quiz.NewDirLoader(cfg.QuizDir))
	diags, err := lib.Reload(ctx)
	if err != nil {
		return fmt.Errorf("load quizzes from %s: %w", cfg.QuizDir, err)
	}
	for _, d := range diags {
		log.Printf("quiz: %s", d)
	}
	log.Printf("loaded %d quizzes from %s", lib.Catalog().Len(), cfg.QuizDir)

	// --- Submissions: SQL + YAML archive, events, reviewer mail ---
	sqlStore := submission.NewSQLStore(dbh, cfg.DBDriver)
	archive := submission.NewArchive(bs)

	pub, err := event.NewPublisher(cfg.RabbitURI, cfg.RabbitExchange)
	if err != nil {
		return err
	}
	defer pub.Close()

	host, _ := os.Hostname()
	emitters := []submission.Emitter{syncx.NewEventRepo(dbh, host)}
	if pub.Enabled() {
		emitters = append(emitters, pub)
	}

	policy := notify.Policy{Server: cfg.MailServer, Recipients: cfg.ReviewerEmails}
	if policy.Suppressed() {
		log.Printf("reviewer mail disabled (server=%q recipients=%v)", cfg.MailServer, cfg.ReviewerEmails)
	}
	mailer := notify.NewMailer(policy, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.Title, archive)

	recorder := submission.NewRecorder(submission.NewIDs(), sqlStore, archive).
		WithEmitters(emitters...).
		WithNotifier(mailer)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, &api.Deps{
		Title:         cfg.Title,
		PassingScore:  cfg.PassingScore,
		Library:       lib,
		Sessions:      session.NewManager(store),
		Recorder:      recorder,
		Auth:          auth.NewAuthService(cfg.AuthSecret, cfg.CookieSecure, cfg.SessionTTL),
		Submissions:   sqlStore,
		Archive:       archive,
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
	})

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe() }()
	log.Printf("listening on %s (mode=%s, db=%s, sessions=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.SessionDriver)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("server stopped")
	return nil
}
