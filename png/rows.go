package png

import "github.com/cocosip/go-png-codec/png/engine"

// PlanRows lays height rows of width*bytesPerPixel bytes back to back from
// offset 0. The table indexes whichever buffer it is handed with, so it is
// planned again for every buffer and never kept past one engine call.
func PlanRows(width, height, bytesPerPixel int) engine.Rows {
	stride := width * bytesPerPixel
	offsets := make([]int, height)
	for y := range offsets {
		offsets[y] = y * stride
	}
	return engine.Rows{Offsets: offsets, Stride: stride}
}
