package tiling

import (
	"fmt"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/phrase"
)

// Composition is a progression together with the sections placements may
// not cross. With no segments the whole progression is one section.
type Composition struct {
	Slice    model.ChordSlice
	Segments []BarRange
}

func (c Composition) segments() []BarRange {
	if len(c.Segments) == 0 {
		return []BarRange{{From: 0, To: c.Slice.Bars - 1}}
	}
	return c.Segments
}

// Generator synthesizes fragments for a gap. gap starts at bar 0; next is the
// pitch the line should lead into, when known.
type Generator func(gap model.ChordSlice, next *uint8) []*model.Fragment

// CoverageMap is the authoritative record of which bars are claimed, and by
// which placement. It lives for one generation request.
type CoverageMap struct {
	comp    Composition
	window  BarRange
	adapter PhraseAdapter

	// segment index per bar, -1 outside the window or any segment
	segment []int
	// placements by start bar
	starts []*Placement
	cover  []*Placement

	listeners map[int]func(*Placement)
	nextID    int
}

func NewCoverageMap(comp Composition, window BarRange, adapter PhraseAdapter) *CoverageMap {
	bars := comp.Slice.Bars
	if bars < 1 {
		panic("composition has no bars")
	}
	if window.From < 0 || window.To >= bars || window.From > window.To {
		panic(fmt.Sprintf("window %s is outside a %d bar composition", window, bars))
	}
	if adapter == nil {
		adapter = TransposingAdapter{}
	}

	cm := &CoverageMap{
		comp:    comp,
		window:  window,
		adapter: adapter,
		segment: make([]int, bars),
		starts:  make([]*Placement, bars),
		cover:   make([]*Placement, bars),

		listeners: make(map[int]func(*Placement)),
	}
	for i := range cm.segment {
		cm.segment[i] = -1
	}
	for i, seg := range comp.segments() {
		if seg.From < 0 || seg.To >= bars || seg.From > seg.To {
			panic(fmt.Sprintf("segment %s is outside a %d bar composition", seg, bars))
		}
		for b := seg.From; b <= seg.To; b++ {
			if cm.segment[b] != -1 {
				panic(fmt.Sprintf("segment %s overlaps another segment at bar %d", seg, b))
			}
			if window.Contains(b) {
				cm.segment[b] = i
			}
		}
	}
	return cm
}

func (cm *CoverageMap) Window() BarRange {
	return cm.window
}

func (cm *CoverageMap) Adapter() PhraseAdapter {
	return cm.adapter
}

// Bars is the length of the whole composition, window or not.
func (cm *CoverageMap) Bars() int {
	return len(cm.segment)
}

// Target cuts the chords under r out of the composition.
func (cm *CoverageMap) Target(r BarRange) model.ChordSlice {
	return chord.Sub(cm.comp.Slice, r.From, r.To)
}

// Usable reports whether r lies inside the window and within one segment.
func (cm *CoverageMap) Usable(r BarRange) bool {
	if r.From < 0 || r.To >= len(cm.segment) || r.From > r.To {
		return false
	}
	seg := cm.segment[r.From]
	if seg < 0 {
		return false
	}
	for b := r.From + 1; b <= r.To; b++ {
		if cm.segment[b] != seg {
			return false
		}
	}
	return true
}

func (cm *CoverageMap) Free(r BarRange) bool {
	if !cm.Usable(r) {
		return false
	}
	for b := r.From; b <= r.To; b++ {
		if cm.cover[b] != nil {
			return false
		}
	}
	return true
}

// Place commits p. The range must be free; placing over a claimed bar is a
// programming error.
func (cm *CoverageMap) Place(p *Placement) {
	if !cm.Free(p.Bars) {
		panic(fmt.Sprintf("can't place %s: bars are not free", p))
	}
	cm.starts[p.Bars.From] = p
	for b := p.Bars.From; b <= p.Bars.To; b++ {
		cm.cover[b] = p
	}
	for id := 0; id < cm.nextID; id++ {
		if fn, ok := cm.listeners[id]; ok {
			fn(p)
		}
	}
}

// Subscribe registers fn to run after every Place, in subscription order.
// The returned func unsubscribes.
func (cm *CoverageMap) Subscribe(fn func(*Placement)) func() {
	id := cm.nextID
	cm.nextID++
	cm.listeners[id] = fn
	return func() { delete(cm.listeners, id) }
}

// At returns the placement covering bar, if any.
func (cm *CoverageMap) At(bar int) *Placement {
	if bar < 0 || bar >= len(cm.cover) {
		return nil
	}
	return cm.cover[bar]
}

// StartingAt returns the placement whose range begins at bar, if any.
func (cm *CoverageMap) StartingAt(bar int) *Placement {
	if bar < 0 || bar >= len(cm.starts) {
		return nil
	}
	return cm.starts[bar]
}

func (cm *CoverageMap) Tiled() []int {
	var res []int
	for b := cm.window.From; b <= cm.window.To; b++ {
		if cm.cover[b] != nil {
			res = append(res, b)
		}
	}
	return res
}

// NonTiled lists the usable bars nothing covers yet.
func (cm *CoverageMap) NonTiled() []int {
	var res []int
	for b := cm.window.From; b <= cm.window.To; b++ {
		if cm.segment[b] >= 0 && cm.cover[b] == nil {
			res = append(res, b)
		}
	}
	return res
}

func (cm *CoverageMap) Complete() bool {
	return len(cm.NonTiled()) == 0
}

// Runs returns the start bars of n-bar chunks cut from every maximal free
// run, left to right. Leftovers shorter than n are skipped.
func (cm *CoverageMap) Runs(n int) []int {
	if n < 1 {
		panic(fmt.Sprintf("run length %d is not positive", n))
	}
	var res []int
	b := cm.window.From
	for b <= cm.window.To {
		if !cm.Free(BarRange{From: b, To: b}) {
			b++
			continue
		}
		end := b
		for end+1 <= cm.window.To && cm.Free(BarRange{From: b, To: end + 1}) {
			end++
		}
		for start := b; start+n-1 <= end; start += n {
			res = append(res, start)
		}
		b = end + 1
	}
	return res
}

// Placements returns the committed placements in bar order.
func (cm *CoverageMap) Placements() []*Placement {
	var res []*Placement
	for _, p := range cm.starts {
		if p != nil {
			res = append(res, p)
		}
	}
	return res
}

// Build splices the adapted phrases of every placement into one phrase over
// the window, starting at beat 0. Uncovered bars are silent.
func (cm *CoverageMap) Build() model.Phrase {
	var res model.Phrase
	for _, p := range cm.Placements() {
		res = phrase.Splice(res, p.Adapted(cm.adapter))
	}
	bpb := chord.BeatsPerBar(cm.comp.Slice.Time)
	return phrase.Clip(res, float64(cm.window.From)*bpb, float64(cm.window.To+1)*bpb)
}

// Synthesize calls gen once for every distinct n-bar gap shape and returns
// everything it made.
func (cm *CoverageMap) Synthesize(n int, gen Generator) []*model.Fragment {
	seen := make(map[string]bool)
	var res []*model.Fragment
	for _, start := range cm.Runs(n) {
		r := BarRange{From: start, To: start + n - 1}
		gap := cm.Target(r)
		sig := chord.Signature(gap)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		res = append(res, gen(gap, cm.nextPitch(r))...)
	}
	return res
}

// nextPitch is the first pitch of the placement following r in the same
// segment.
func (cm *CoverageMap) nextPitch(r BarRange) *uint8 {
	succ := cm.StartingAt(r.To + 1)
	if succ == nil || !cm.Usable(BarRange{From: r.From, To: r.To + 1}) {
		return nil
	}
	pitch, ok := phrase.First(succ.Adapted(cm.adapter))
	if !ok {
		return nil
	}
	return &pitch
}
