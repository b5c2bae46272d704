package png

import "github.com/cocosip/go-png-codec/png/engine"

// transformed is the engine's answer to a set of directives.
type transformed struct {
	model ColorModel
	// passes is how many interlace passes the engine will read.
	passes int
}

// applyTransforms issues d to the engine in a fixed order and lets the
// engine recompute the header.
func applyTransforms(r engine.Reader, info *engine.Info, d Directives) (transformed, error) {
	out := transformed{passes: 1}
	if d.PaletteToRGB {
		r.SetPaletteToRGB()
	}
	if d.GrayToRGB {
		r.SetGrayToRGB()
	}
	if d.Strip16 {
		r.SetStrip16()
	}
	if d.TRNSToAlpha {
		r.SetTRNSToAlpha()
	} else if d.AddFiller {
		r.SetAddAlpha(d.Filler, engine.FillerAfter)
	}
	if d.Packing {
		r.SetPacking()
	}
	if d.InterlaceHandling {
		out.passes = r.SetInterlaceHandling()
	}
	if err := r.ReadUpdateInfo(info); err != nil {
		return transformed{}, err
	}
	out.model = modelOf(info.Header)
	return out, nil
}
