package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/basstile/model"
)

// Resolution of the files WritePhrase produces, in ticks per quarter note.
const Resolution = 960

var ErrNoNotes = errors.New("no notes in track")

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, fmt.Errorf("parsing midi file %s: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("parsing midi file %s: %w", filepath, err)
	}
	return res, nil
}

func ticksPerBeat(s *smf.SMF) (float64, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || mt == 0 {
		return 0, fmt.Errorf("unsupported time format %v", s.TimeFormat)
	}
	return float64(mt), nil
}

func trackNotes(track smf.Track, tpb float64) model.Phrase {
	var res model.Phrase
	open := make(map[uint8][]int)

	var abs int64
	for _, evt := range track {
		abs += int64(evt.Delta)
		beat := float64(abs) / tpb
		var channel, key, velocity uint8
		switch {
		case evt.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
			open[key] = append(open[key], len(res))
			res = append(res, model.Note{Pitch: key, Velocity: velocity, Start: beat})
		case evt.Message.GetNoteOn(&channel, &key, &velocity),
			evt.Message.GetNoteOff(&channel, &key, &velocity):
			if idx := open[key]; len(idx) > 0 {
				n := &res[idx[0]]
				n.Duration = beat - n.Start
				open[key] = idx[1:]
			}
		}
	}

	// notes never switched off end with the track
	end := float64(abs) / tpb
	for _, idx := range open {
		for _, i := range idx {
			res[i].Duration = math.Max(end-res[i].Start, 0)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Start < res[j].Start
	})
	return res
}

// ExtractPhrase reads the notes of one track as a phrase in quarter-note
// beats. A negative track picks the first track that has notes.
func ExtractPhrase(s *smf.SMF, track int) (model.Phrase, error) {
	tpb, err := ticksPerBeat(s)
	if err != nil {
		return nil, err
	}
	if track >= len(s.Tracks) {
		return nil, fmt.Errorf("track %d out of range, file has %d", track, len(s.Tracks))
	}
	if track >= 0 {
		notes := trackNotes(s.Tracks[track], tpb)
		if len(notes) == 0 {
			return nil, ErrNoNotes
		}
		return notes, nil
	}
	for _, tr := range s.Tracks {
		if notes := trackNotes(tr, tpb); len(notes) > 0 {
			return notes, nil
		}
	}
	return nil, ErrNoNotes
}

type event struct {
	tick uint32
	off  bool
	note model.Note
}

func toTicks(beats float64) uint32 {
	return uint32(math.Round(math.Max(beats, 0) * Resolution))
}

// NewSMF renders p as a single track file on channel.
func NewSMF(p model.Phrase, ts model.TimeSignature, tempo float64, channel uint8) (*smf.SMF, error) {
	var events []event
	for _, n := range p {
		events = append(events,
			event{tick: toTicks(n.Start), note: n},
			event{tick: toTicks(n.End()), off: true, note: n})
	}
	// offs before ons on the same tick so repeated notes retrigger
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var tr smf.Track
	tr.Add(0, smf.MetaMeter(uint8(ts.Beats), uint8(ts.Unit)))
	if tempo > 0 {
		tr.Add(0, smf.MetaTempo(tempo))
	}
	var last uint32
	for _, e := range events {
		delta := e.tick - last
		last = e.tick
		if e.off {
			tr.Add(delta, gomidi.NoteOff(channel, e.note.Pitch))
		} else {
			tr.Add(delta, gomidi.NoteOn(channel, e.note.Pitch, e.note.Velocity))
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(Resolution)
	if err := s.Add(tr); err != nil {
		return nil, err
	}
	return s, nil
}

func WritePhrase(w io.Writer, p model.Phrase, ts model.TimeSignature, tempo float64) error {
	s, err := NewSMF(p, ts, tempo, 0)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}
