package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anoixa/photo-share/internal/app"
	"github.com/anoixa/photo-share/utils"
	"github.com/spf13/cobra"
)

// analyzeCmd 同步执行相册云端分析
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run cloud analysis for an album in the foreground",
	Long: `Run cloud analysis for every photo of an album and print a summary.

Examples:
  photo-share analyze --album 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		albumID, _ := cmd.Flags().GetUint("album")
		if albumID == 0 {
			return fmt.Errorf("--album is required")
		}
		return runAnalyze(cmd, albumID)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Uint("album", 0, "Album ID to analyze")
}

func runAnalyze(cmd *cobra.Command, albumID uint) error {
	cfg := loadConfig()
	log := utils.Component("analyze")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := app.NewContainer(cfg)
	if err := container.Init(ctx); err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to release resources")
		}
	}()

	album, err := container.AlbumsRepo.GetByID(ctx, albumID)
	if err != nil {
		return err
	}
	if album == nil {
		return fmt.Errorf("album %d not found", albumID)
	}

	summary, err := container.Orchestrator.RunAlbum(ctx, albumID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "album %d (%s): total=%d analyzed=%d skipped=%d failed=%d\n",
		summary.AlbumID, album.Name, summary.Total, summary.Analyzed, summary.Skipped, summary.Failed)
	return nil
}
