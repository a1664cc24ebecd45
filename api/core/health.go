package core

import (
	"context"
	"time"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/storage"
	"gorm.io/gorm"
)

const healthCheckTimeout = 3 * time.Second

func checkDatabaseHealth(db *gorm.DB) string {
	if db == nil {
		return "not initialized"
	}
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	if err := database.Ping(ctx, db); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(provider cache.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	return "ok"
}

func checkStorageHealth(store storage.Provider) string {
	if store == nil {
		return "not initialized"
	}
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	if err := store.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
