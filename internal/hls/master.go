package hls

import (
	"fmt"

	"github.com/grafov/m3u8"
)

// Variant is one media playlist advertised by a master playlist.
type Variant struct {
	URI       string
	Bandwidth uint32
	Codecs    string
	Width     int64
	Height    int64
	FrameRate float64
}

// GenerateMasterPlaylist creates the HLS master playlist string listing every variant.
func GenerateMasterPlaylist(variants []Variant) (string, error) {
	if len(variants) == 0 {
		return "", fmt.Errorf("cannot generate a master playlist without variants")
	}

	master := m3u8.NewMasterPlaylist()
	for _, v := range variants {
		params := m3u8.VariantParams{
			Bandwidth: v.Bandwidth,
			Codecs:    v.Codecs,
			FrameRate: v.FrameRate,
		}
		if v.Width > 0 && v.Height > 0 {
			params.Resolution = fmt.Sprintf("%dx%d", v.Width, v.Height)
		}
		master.Append(v.URI, nil, params)
	}

	return master.String(), nil
}
