package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/config"
	"github.com/jsphweid/basstile/library"
	"github.com/jsphweid/basstile/midi"
)

const fourBars = `tempo: 120
styles: [walking]
chords:
  - {bar: 0, chord: C}
  - {bar: 1, chord: Am}
  - {bar: 2, chord: F}
  - {bar: 3, chord: G}
`

func useConfig(t *testing.T, c config.Config) {
	old := cfg
	cfg = c
	t.Cleanup(func() { cfg = old })
}

func testCommand() *cobra.Command {
	c := &cobra.Command{}
	c.SetContext(context.Background())
	return c
}

func writeSong(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "song.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestGenerateWritesMidi(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "library.dat")
	useConfig(t, config.Config{Seed: 1, LibraryPath: lib})
	out := filepath.Join(dir, "bass.mid")

	require.NoError(t, generate(testCommand(), writeSong(t, dir, fourBars), out, false))

	parsed, err := midi.ReadMidiFile(out)
	require.NoError(t, err)
	notes, err := midi.ExtractPhrase(parsed, -1)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	for _, n := range notes {
		assert.Less(t, n.Start, 16.0)
	}

	// synthesized fragments stay in memory without --save
	_, err = os.Stat(lib)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerateSavesOnlyNewFragments(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "library.dat")
	useConfig(t, config.Config{Seed: 1, LibraryPath: lib})
	songPath := writeSong(t, dir, fourBars)

	require.NoError(t, generate(testCommand(), songPath, filepath.Join(dir, "a.mid"), true))
	saved, err := library.Load(lib)
	require.NoError(t, err)
	require.NotZero(t, saved.Len())

	// the second run reuses what the first one synthesized
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(lib, past, past))
	require.NoError(t, generate(testCommand(), songPath, filepath.Join(dir, "b.mid"), true))

	info, err := os.Stat(lib)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "library rewritten at %v", info.ModTime())
	again, err := library.Load(lib)
	require.NoError(t, err)
	assert.Equal(t, saved.Len(), again.Len())
}

func TestGenerateRejectsBadSongs(t *testing.T) {
	dir := t.TempDir()
	useConfig(t, config.Config{Seed: 1, LibraryPath: filepath.Join(dir, "library.dat")})
	out := filepath.Join(dir, "bass.mid")

	err := generate(testCommand(), writeSong(t, dir, "tempo: 120\nchords:\n  - {bar: 0, chord: H7}\n"), out, false)
	assert.ErrorIs(t, err, chord.ErrMalformed)
	assert.Equal(t, 2, exitCode(err))

	_, err = os.Stat(out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerateReportsUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	useConfig(t, config.Config{Seed: 1, LibraryPath: filepath.Join(dir, "library.dat")})

	err := generate(testCommand(), writeSong(t, dir, fourBars), filepath.Join(dir, "missing", "bass.mid"), false)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}
