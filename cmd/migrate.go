package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/internal/app"
	"github.com/anoixa/photo-share/utils"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed roles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		log := utils.Component("migrate")

		container := app.NewContainer(cfg)
		if err := container.InitDatabase(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer func() { _ = database.Close(container.DB) }()

		InitDatabase(cmd.Context(), container)
	},
}

// migrateCopyCmd 在两个数据库之间复制数据
var migrateCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy all data from one database to another",
	Long: `Copy users, roles, albums, photos and comments between databases.

Examples:
  # SQLite to PostgreSQL
  photo-share migrate copy --from-sqlite ./data/photo-share.db --to-postgres "host=localhost user=postgres password=secret dbname=photos port=5432"

  # Stop on the first conflicting row
  photo-share migrate copy --from-sqlite ./data/photo-share.db --to-postgres "..." --on-conflict=error`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fromSQLite, _ := cmd.Flags().GetString("from-sqlite")
		toPostgres, _ := cmd.Flags().GetString("to-postgres")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		onConflict, _ := cmd.Flags().GetString("on-conflict")
		if fromSQLite == "" || toPostgres == "" {
			return fmt.Errorf("both --from-sqlite and --to-postgres are required")
		}
		if onConflict != "skip" && onConflict != "error" {
			return fmt.Errorf("invalid on-conflict strategy: %s (must be skip or error)", onConflict)
		}

		loadConfig()
		src, err := openDatabase("sqlite", fromSQLite)
		if err != nil {
			return fmt.Errorf("failed to connect to source database: %w", err)
		}
		defer func() { _ = database.Close(src) }()

		dst, err := openDatabase("postgres", toPostgres)
		if err != nil {
			return fmt.Errorf("failed to connect to target database: %w", err)
		}
		defer func() { _ = database.Close(dst) }()

		stats, err := copyDatabase(cmd.Context(), src, dst, batchSize, onConflict == "error")
		printCopyStats(cmd, stats)
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateCopyCmd)

	migrateCopyCmd.Flags().String("from-sqlite", "", "Source SQLite file path")
	migrateCopyCmd.Flags().String("to-postgres", "", "Target PostgreSQL connection string")
	migrateCopyCmd.Flags().Int("batch-size", 200, "Batch size for data copy")
	migrateCopyCmd.Flags().String("on-conflict", "skip", "Conflict resolution strategy: skip (default), error")
}

// copyStats 复制统计
type copyStats struct {
	roles    int64
	users    int64
	albums   int64
	photos   int64
	comments int64
}

// openDatabase 打开数据库连接
func openDatabase(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// copyDatabase 按依赖顺序复制全部表，保留主键
func copyDatabase(ctx context.Context, src, dst *gorm.DB, batchSize int, strict bool) (*copyStats, error) {
	if batchSize <= 0 {
		batchSize = 200
	}
	stats := &copyStats{}
	log := utils.Component("migrate")

	if err := database.AutoMigrate(dst); err != nil {
		return stats, fmt.Errorf("failed to migrate schema: %w", err)
	}

	steps := []struct {
		name  string
		count *int64
		run   func() (int64, error)
	}{
		{"roles", &stats.roles, func() (int64, error) { return copyTable[models.Role](ctx, src, dst, batchSize, strict) }},
		{"users", &stats.users, func() (int64, error) { return copyUsers(ctx, src, dst, batchSize, strict) }},
		{"albums", &stats.albums, func() (int64, error) { return copyTable[models.Album](ctx, src, dst, batchSize, strict) }},
		{"photos", &stats.photos, func() (int64, error) { return copyTable[models.Photo](ctx, src, dst, batchSize, strict) }},
		{"comments", &stats.comments, func() (int64, error) { return copyTable[models.Comment](ctx, src, dst, batchSize, strict) }},
	}
	for _, step := range steps {
		n, err := step.run()
		*step.count = n
		if err != nil {
			return stats, fmt.Errorf("%s copy failed: %w", step.name, err)
		}
		log.Info().Str("table", step.name).Int64("rows", n).Msg("table copied")
	}

	if err := resetSequences(ctx, dst); err != nil {
		return stats, fmt.Errorf("failed to reset sequences: %w", err)
	}
	return stats, nil
}

// resetSequences 显式写入主键后，PostgreSQL 序列需要推进到当前最大值
func resetSequences(ctx context.Context, db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"roles", "users", "albums", "photos", "comments"} {
		sql := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1)) FROM %[1]s", table)
		if err := db.WithContext(ctx).Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// copyTable 分批复制一张表，strict 时主键冲突报错，否则跳过
func copyTable[T any](ctx context.Context, src, dst *gorm.DB, batchSize int, strict bool) (int64, error) {
	var copied int64
	var rows []T
	result := src.WithContext(ctx).FindInBatches(&rows, batchSize, func(tx *gorm.DB, batch int) error {
		insert := dst.WithContext(ctx).Omit(clause.Associations)
		if !strict {
			insert = insert.Clauses(clause.OnConflict{DoNothing: true})
		}
		res := insert.Create(&rows)
		if res.Error != nil {
			return res.Error
		}
		copied += res.RowsAffected
		return nil
	})
	return copied, result.Error
}

// copyUsers 复制用户及其角色关联
func copyUsers(ctx context.Context, src, dst *gorm.DB, batchSize int, strict bool) (int64, error) {
	copied, err := copyTable[models.User](ctx, src, dst, batchSize, strict)
	if err != nil {
		return copied, err
	}

	type userRole struct {
		UserID uint
		RoleID uint
	}
	var links []userRole
	if err := src.WithContext(ctx).Table("user_roles").Select("user_id, role_id").Scan(&links).Error; err != nil {
		return copied, err
	}
	if len(links) == 0 {
		return copied, nil
	}
	err = dst.WithContext(ctx).Table("user_roles").
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(links, batchSize).Error
	return copied, err
}

// printCopyStats 打印复制统计
func printCopyStats(cmd *cobra.Command, stats *copyStats) {
	if stats == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "========================================")
	fmt.Fprintln(out, "       Copy Statistics")
	fmt.Fprintln(out, "========================================")
	fmt.Fprintf(out, "Roles copied:      %d\n", stats.roles)
	fmt.Fprintf(out, "Users copied:      %d\n", stats.users)
	fmt.Fprintf(out, "Albums copied:     %d\n", stats.albums)
	fmt.Fprintf(out, "Photos copied:     %d\n", stats.photos)
	fmt.Fprintf(out, "Comments copied:   %d\n", stats.comments)
	fmt.Fprintln(out, "========================================")
}
