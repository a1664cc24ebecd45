package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/photo-share/api/core"
	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/internal/app"
	"github.com/anoixa/photo-share/utils"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	cfg := loadConfig()
	log := utils.Component("serve")

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatal().Err(err).Msg("Failed to create data directory")
	}

	ctx := context.Background()
	container := app.NewContainer(cfg)
	if err := container.InitDatabase(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	InitDatabase(ctx, container)

	if err := container.InitServices(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	// 启动gin
	server, cleanup := core.StartServer(container)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("Server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	cleanup()

	if err := container.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to release resources")
	}

	log.Info().Msg("Server exited successfully")
}

// InitDatabase 自动迁移、写入角色并创建默认管理员
func InitDatabase(ctx context.Context, container *app.Container) {
	log := utils.Component("database")
	log.Info().Str("type", container.GetConfig().DBType).Msg("Initializing database")

	// 自动DDL
	if err := database.AutoMigrate(container.DB); err != nil {
		log.Fatal().Err(err).Msg("Failed to auto migrate database")
	}
	if err := database.SeedRoles(ctx, container.DB); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed roles")
	}

	// 创建默认管理员用户
	password, err := container.AccountsRepo.CreateDefaultAdminUser(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create default admin user")
	}
	if password != "" {
		log.Warn().Str("username", "admin").Str("password", password).Msg("Default admin user created, change the password after first login")
	}

	log.Info().Msg("Database initialized successfully")
}
