package cmd

import (
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/song"
	"github.com/jsphweid/basstile/tiling"
)

// render runs sess over sg and summarizes the outcome.
func render(sess *tiling.Session, sg song.Song) (model.GenerateResponse, model.ChordSlice, error) {
	var resp model.GenerateResponse
	comp, err := sg.Composition()
	if err != nil {
		return resp, model.ChordSlice{}, err
	}
	styles, err := sg.StyleList()
	if err != nil {
		return resp, comp.Slice, err
	}
	window, err := sg.BarWindow(comp.Slice.Bars)
	if err != nil {
		return resp, comp.Slice, err
	}

	res, err := sess.Generate(tiling.Request{Composition: comp, Styles: styles, Window: window})
	if err != nil {
		return resp, comp.Slice, err
	}

	w := res.Map.Window()
	resp = model.GenerateResponse{
		Notes:     res.Phrase,
		Bars:      w.Size(),
		Complete:  res.Complete,
		Uncovered: res.Map.NonTiled(),
	}
	if resp.Notes == nil {
		resp.Notes = model.Phrase{}
	}
	if resp.Uncovered == nil {
		resp.Uncovered = []int{}
	}
	for _, p := range res.Map.Placements() {
		resp.Placements = append(resp.Placements, model.PlacementSummary{
			FragmentID: p.Fragment.ID,
			Style:      p.Fragment.Style,
			From:       p.Bars.From,
			To:         p.Bars.To,
			Overall:    p.Score().Overall(),
		})
	}
	return resp, comp.Slice, nil
}
