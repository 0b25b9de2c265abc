//go:build e2e
// +build e2e

package e2e_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jsphweid/basstile/cmd"
	"github.com/jsphweid/basstile/config"
	"github.com/jsphweid/basstile/library"
	"github.com/jsphweid/basstile/midi"
	"github.com/jsphweid/basstile/model"
)

const manifest = `recordings:
  - file: two-five-one.mid
    style: walking
    tempo: 120
    chords:
      - {bar: 0, chord: Dm7}
      - {bar: 1, chord: G7}
      - {bar: 2, chord: Cmaj7}
      - {bar: 3, chord: Cmaj7}
`

var server *cmd.Server

func quarters(pitches ...uint8) model.Phrase {
	var res model.Phrase
	for i, p := range pitches {
		res = append(res, model.Note{Pitch: p, Velocity: 90, Start: float64(i), Duration: 1})
	}
	return res
}

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "basstile-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	take := quarters(38, 41, 45, 41, 43, 47, 50, 47, 36, 40, 43, 47, 48, 47, 43, 40)
	f, err := os.Create(filepath.Join(dir, "two-five-one.mid"))
	if err != nil {
		panic(err)
	}
	if err := midi.WritePhrase(f, take, model.TimeSignature{Beats: 4, Unit: 4}, 120); err != nil {
		panic(err)
	}
	f.Close()
	manifestPath := filepath.Join(dir, "manifest.yaml")
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		panic(err)
	}

	libraryPath := filepath.Join(dir, "library.dat")
	os.Setenv("BASSTILE_LIBRARY_PATH", libraryPath)
	os.Setenv("BASSTILE_SEED", "7")
	os.Setenv("BASSTILE_CACHE_RANDOMIZATION", "false")
	if err := cmd.Setup(); err != nil {
		panic(err)
	}
	if err := cmd.Index(context.Background(), manifestPath, false); err != nil {
		panic(err)
	}

	c, err := config.Load()
	if err != nil {
		panic(err)
	}
	store, err := library.Load(libraryPath)
	if err != nil {
		panic(err)
	}
	server = cmd.NewServer(store, c, zap.NewNop(), prometheus.NewRegistry())

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func generate(t *testing.T, body string) model.GenerateResponse {
	req := httptest.NewRequest(http.MethodPost, "/bassline", strings.NewReader(body))
	w := httptest.NewRecorder()
	server.HandleGenerate(w, req)

	resp := w.Result()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var res model.GenerateResponse
	require.NoError(t, json.Unmarshal(data, &res))
	return res
}

func TestIndexedLineCoversItsOwnProgression(t *testing.T) {
	res := generate(t, `{"tempo": 120, "chords": [
		{"bar": 0, "chord": "Dm7"}, {"bar": 1, "chord": "G7"},
		{"bar": 2, "chord": "Cmaj7"}, {"bar": 3, "chord": "Cmaj7"}]}`)

	assert := assert.New(t)
	assert.True(res.Complete)
	require.NotEmpty(t, res.Placements)
	for _, p := range res.Placements {
		assert.Equal(model.StyleWalking, p.Style)
	}
	assert.Equal(uint8(38), res.Notes[0].Pitch)
}

func TestTransposedProgressionReusesTheLibrary(t *testing.T) {
	res := generate(t, `{"tempo": 120, "chords": [
		{"bar": 0, "chord": "Em7"}, {"bar": 1, "chord": "A7"},
		{"bar": 2, "chord": "Dmaj7"}, {"bar": 3, "chord": "Dmaj7"}]}`)

	assert := assert.New(t)
	assert.True(res.Complete)
	for _, p := range res.Placements {
		assert.Equal(model.StyleWalking, p.Style)
	}
	assert.Equal(uint8(40), res.Notes[0].Pitch)
}

func TestUnknownProgressionIsSynthesized(t *testing.T) {
	res := generate(t, `{"tempo": 70, "styles": ["ballad"], "chords": [
		{"bar": 0, "chord": "Bbm"}, {"bar": 1, "chord": "Gb"}, {"bar": 2, "chord": "Db/F"}]}`)

	assert.True(t, res.Complete)
	for _, p := range res.Placements {
		assert.Equal(t, model.StyleCustom, p.Style)
	}
}
