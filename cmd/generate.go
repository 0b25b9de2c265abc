package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jsphweid/basstile/library"
	"github.com/jsphweid/basstile/midi"
	"github.com/jsphweid/basstile/song"
	"github.com/jsphweid/basstile/tiling"
)

func init() {
	generateCmd.Flags().StringP("out", "o", "bass.mid", "MIDI file to write")
	generateCmd.Flags().Bool("save", false, "write synthesized fragments back to the library")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate <song.yaml>",
	Short: "Generates a bass line for a song",
	Long:  `Generates a bass line for the progression in a song file and writes it as MIDI.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		save, _ := cmd.Flags().GetBool("save")
		return generate(cmd, args[0], out, save)
	},
}

func generate(cmd *cobra.Command, songPath, out string, save bool) error {
	sg, err := song.Load(songPath)
	if err != nil {
		return err
	}
	store, err := openLibrary(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	before := store.Len()

	sess := tiling.NewSession(store, cfg.Settings,
		tiling.WithLogger(logger),
		tiling.WithRand(newRand(cfg.Seed)))
	resp, slice, err := render(sess, sg)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := midi.WritePhrase(f, resp.Notes, slice.Time, slice.Tempo); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	logger.Info("bass line written",
		zap.String("out", out),
		zap.Int("bars", resp.Bars),
		zap.Int("placements", len(resp.Placements)),
		zap.Ints("uncovered", resp.Uncovered))

	if save && store.Len() > before {
		if err := library.Save(store, cfg.LibraryPath); err != nil {
			return err
		}
		logger.Info("library updated", zap.Int("synthesized", store.Len()-before))
	}
	return nil
}
