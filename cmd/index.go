package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jsphweid/basstile/library"
)

func init() {
	indexCmd.Flags().Bool("publish", false, "also publish fragments to DynamoDB")
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index <manifest.yaml>",
	Short: "Builds the fragment library",
	Long: `Cuts the recordings listed in a manifest into 1 to 4 bar fragments and
writes them to the library file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		publish, _ := cmd.Flags().GetBool("publish")
		return Index(cmd.Context(), args[0], publish)
	},
}

// Index builds the library file from a manifest and optionally publishes it.
func Index(ctx context.Context, manifestPath string, publish bool) error {
	m, err := library.ReadManifest(manifestPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(manifestPath)
	if unlisted, err := library.Unlisted(m, dir); err != nil {
		logger.Warn("could not scan for recordings", zap.String("dir", dir), zap.Error(err))
	} else if len(unlisted) > 0 {
		logger.Warn("MIDI files missing from the manifest", zap.Strings("files", unlisted))
	}

	store := library.NewMemoryStore()
	rep := library.Index(m, dir, store, logger)
	if err := library.Save(store, cfg.LibraryPath); err != nil {
		return err
	}
	logger.Info("library written",
		zap.String("path", cfg.LibraryPath),
		zap.Int("recordings", len(rep.Files)),
		zap.Int("skipped", rep.Skipped),
		zap.Int("fragments", rep.Added),
		zap.Int("duplicates", rep.Duplicates))

	if !publish {
		return nil
	}
	d, err := library.DialDynamo(cfg.Dynamo.Endpoint, cfg.Dynamo.Region, cfg.Dynamo.Table)
	if err != nil {
		return err
	}
	put := 0
	for _, f := range store.All() {
		ok, err := d.Put(ctx, f)
		if err != nil {
			return err
		}
		if ok {
			put++
		}
	}
	logger.Info("published to DynamoDB", zap.String("table", cfg.Dynamo.Table), zap.Int("fragments", put))
	return nil
}
