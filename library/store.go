// Package library stores bass fragments and finds them by style and root
// profile.
package library

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/util"
)

type bucketKey struct {
	style   model.Style
	profile string
}

// MemoryStore is the in-process fragment store. It is safe for concurrent
// use.
type MemoryStore struct {
	mu          sync.RWMutex
	byID        map[string]*model.Fragment
	buckets     map[bucketKey][]*model.Fragment
	equivalents map[string]string
	recordings  map[uint32][]*model.Fragment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:        make(map[string]*model.Fragment),
		buckets:     make(map[bucketKey][]*model.Fragment),
		equivalents: make(map[string]string),
		recordings:  make(map[uint32][]*model.Fragment),
	}
}

// Find returns the fragments of style recorded over chords with the given
// root profile, in insertion order.
func (s *MemoryStore) Find(style model.Style, profile string) []*model.Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.buckets[bucketKey{style: style, profile: profile}]
	res := make([]*model.Fragment, len(b))
	copy(res, b)
	return res
}

// Add stores f unless an equivalent fragment is already there. Fragments are
// equivalent when they differ only by transposition or by timing finer than
// a sixteenth.
func (s *MemoryStore) Add(f *model.Fragment) bool {
	if f.ID == "" {
		panic("fragment has no id")
	}
	if f.Size < 1 || f.Size > constants.MaxFragmentBars {
		panic(fmt.Sprintf("fragment %s has size %d", f.ID, f.Size))
	}
	eq := EquivalenceKey(f)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[f.ID]; ok {
		return false
	}
	if _, ok := s.equivalents[eq]; ok {
		return false
	}
	s.byID[f.ID] = f
	s.equivalents[eq] = f.ID
	k := bucketKey{style: f.Style, profile: chord.RootProfile(f.Home)}
	s.buckets[k] = append(s.buckets[k], f)
	if f.Source.Recording != 0 {
		s.recordings[f.Source.Recording] = append(s.recordings[f.Source.Recording], f)
	}
	return true
}

// Related returns the other fragments cut from overlapping bars of the same
// recording.
func (s *MemoryStore) Related(f *model.Fragment) []*model.Fragment {
	if f.Source.Recording == 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := f.Bars()
	var res []*model.Fragment
	for _, o := range s.recordings[f.Source.Recording] {
		if o.ID == f.ID {
			continue
		}
		ofrom, oto := o.Bars()
		if ofrom <= to && oto >= from {
			res = append(res, o)
		}
	}
	return res
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// All returns every fragment ordered by style, profile and insertion.
func (s *MemoryStore) All() []*model.Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make(map[string]bucketKey, len(s.buckets))
	for k := range s.buckets {
		keys[string(k.style)+"\x00"+k.profile] = k
	}
	var res []*model.Fragment
	for _, name := range util.GetKeys(keys) {
		res = append(res, s.buckets[keys[name]]...)
	}
	return res
}

// Replace swaps the contents of s for those of o.
func (s *MemoryStore) Replace(o *MemoryStore) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = o.byID
	s.buckets = o.buckets
	s.equivalents = o.equivalents
	s.recordings = o.recordings
}

func quantize(beats float64) int {
	return int(math.Round(beats * 4))
}

// EquivalenceKey identifies a fragment up to transposition and sixteenth-note
// timing.
func EquivalenceKey(f *model.Fragment) string {
	var b strings.Builder
	b.WriteString(string(f.Style))
	b.WriteByte('/')
	b.WriteString(string(f.BaseStyle))
	b.WriteByte('|')
	b.WriteString(chord.RootProfile(f.Home))

	root := 0
	if len(f.Home.Chords) > 0 {
		root = f.Home.Chords[0].Chord.Root
	}
	for i, n := range f.Phrase {
		b.WriteByte('|')
		if i == 0 {
			b.WriteString(strconv.Itoa(chord.Mod12(int(n.Pitch) - root)))
		} else {
			b.WriteString(strconv.Itoa(int(n.Pitch) - int(f.Phrase[i-1].Pitch)))
		}
		b.WriteByte('@')
		b.WriteString(strconv.Itoa(quantize(n.Start)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(util.Max(1, quantize(n.Duration))))
	}
	return b.String()
}
