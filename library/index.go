package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/midi"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/phrase"
	"github.com/jsphweid/basstile/song"
	"github.com/jsphweid/basstile/util"
)

// Recording is one bass performance and the chords it was played over.
type Recording struct {
	File string `yaml:"file"`
	// nil picks the first track with notes
	Track            *int   `yaml:"track,omitempty"`
	Style            string `yaml:"style"`
	song.Progression `yaml:",inline"`
}

type Manifest struct {
	Recordings []Recording `yaml:"recordings"`
}

func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	dat, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(dat, &m); err != nil {
		return m, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// CreateFileNumMap numbers recordings from 1; 0 marks synthesized fragments.
func CreateFileNumMap(recs []Recording) map[uint32]string {
	res := make(map[uint32]string)
	for i, r := range recs {
		res[uint32(i+1)] = r.File
	}
	return res
}

// Unlisted returns the MIDI files under dir that no recording of m refers
// to.
func Unlisted(m Manifest, dir string) ([]string, error) {
	paths, err := util.GatherMidiPaths(dir, 0)
	if err != nil {
		return nil, err
	}
	listed := make(map[string]bool, len(m.Recordings))
	for _, r := range m.Recordings {
		listed[filepath.Clean(filepath.Join(dir, r.File))] = true
	}
	var res []string
	for _, p := range paths {
		if !listed[filepath.Clean(p)] {
			res = append(res, p)
		}
	}
	return res, nil
}

type Report struct {
	Files      map[uint32]string
	Skipped    int
	Added      int
	Duplicates int
}

// Index cuts every recording of m into fragments and adds them to s. File
// paths are relative to dir. Recordings that can't be read are logged and
// skipped.
func Index(m Manifest, dir string, s *MemoryStore, logger *zap.Logger) Report {
	rep := Report{Files: CreateFileNumMap(m.Recordings)}
	for i, rec := range m.Recordings {
		num := uint32(i + 1)
		logger.Info("processing recording",
			zap.Int("n", i+1), zap.Int("of", len(m.Recordings)), zap.String("file", rec.File))

		frags, err := indexRecording(rec, num, dir)
		if err != nil {
			logger.Warn("skipping recording", zap.String("file", rec.File), zap.Error(err))
			rep.Skipped++
			continue
		}
		for _, f := range frags {
			if s.Add(f) {
				rep.Added++
			} else {
				rep.Duplicates++
			}
		}
	}
	return rep
}

func indexRecording(rec Recording, num uint32, dir string) ([]*model.Fragment, error) {
	style, err := model.ParseStyle(rec.Style)
	if err != nil {
		return nil, err
	}
	slice, err := rec.Slice()
	if err != nil {
		return nil, err
	}
	parsed, err := midi.ReadMidiFile(filepath.Join(dir, rec.File))
	if err != nil {
		return nil, err
	}
	track := -1
	if rec.Track != nil {
		track = *rec.Track
	}
	notes, err := midi.ExtractPhrase(parsed, track)
	if err != nil {
		return nil, err
	}
	return Cut(rec.File, style, slice, notes, num), nil
}

// Cut turns a performance over slice into fragments of every size at every
// bar. Windows without notes are skipped.
func Cut(name string, style model.Style, slice model.ChordSlice, notes model.Phrase, num uint32) []*model.Fragment {
	bpb := chord.BeatsPerBar(slice.Time)
	var res []*model.Fragment
	for bar := 0; bar < slice.Bars; bar++ {
		for size := 1; size <= constants.MaxFragmentBars && bar+size <= slice.Bars; size++ {
			from, to := float64(bar)*bpb, float64(bar+size)*bpb
			p := window(notes, from, to)
			if len(p) == 0 {
				continue
			}
			home := chord.Sub(slice, bar, bar+size-1)
			first := downbeat(p)
			last := p[len(p)-1]
			res = append(res, &model.Fragment{
				ID:                uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d#%d", name, bar, size))).String(),
				Style:             style,
				BaseStyle:         style,
				Size:              size,
				Home:              home,
				Phrase:            p,
				PredictedPitch:    nextPitch(notes, to, bpb),
				StartsOnChordTone: chord.IsChordTone(home.Chords[0].Chord, int(first.Pitch)),
				EndsOnChordTone:   chord.IsChordTone(home.Chords[chord.At(home, last.Start)].Chord, int(last.Pitch)),
				Stats:             phrase.Stats(p, size),
				Transposability:   Transposability(p),
				Source:            model.Source{Recording: num, Bar: bar},
			})
		}
	}
	return res
}

// window clips notes to [from, to) rebased to from. Short notes leading into
// from are kept with negative starts. A window with nothing but pickups is
// empty.
func window(notes model.Phrase, from, to float64) model.Phrase {
	body := phrase.Clip(notes, from, to)
	if len(body) == 0 {
		return nil
	}
	var res model.Phrase
	for _, n := range notes {
		if n.Start > from-constants.PickupBeats && n.Start < from && n.End() <= from+0.01 {
			n.Start -= from
			res = append(res, n)
		}
	}
	return append(res, body...)
}

// downbeat is the first note of p that starts inside the window.
func downbeat(p model.Phrase) model.Note {
	for _, n := range p {
		if n.Start >= 0 {
			return n
		}
	}
	return p[0]
}

// nextPitch is the first note starting within a bar after end.
func nextPitch(notes model.Phrase, end, bpb float64) *uint8 {
	for _, n := range notes {
		if n.Start >= end-0.01 && n.Start < end+bpb {
			pitch := n.Pitch
			return &pitch
		}
	}
	return nil
}

// Transposability is the share of the twelve shortest transpositions that
// keep p inside the bass register.
func Transposability(p model.Phrase) float64 {
	if len(p) == 0 {
		return 100
	}
	lo, hi := phrase.Range(p)
	top := constants.LowestBassRoot + 36
	fits := 0
	for semis := -6; semis <= 5; semis++ {
		if int(lo)+semis >= constants.LowestBassRoot && int(hi)+semis <= top {
			fits++
		}
	}
	return float64(fits) * 100 / 12
}
