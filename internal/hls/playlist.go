package hls

import (
	"fmt"
	"mpdkit/internal/models"

	"github.com/grafov/m3u8"
)

// GenerateMediaPlaylist creates a VOD HLS media playlist string from an expanded timeline.
// When initURI is set it is advertised with EXT-X-MAP.
func GenerateMediaPlaylist(segments []models.Segment, initURI string) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("cannot generate a media playlist without segments")
	}

	size := uint(len(segments))
	playlist, err := m3u8.NewMediaPlaylist(size, size)
	if err != nil {
		return "", fmt.Errorf("failed to create media playlist: %w", err)
	}

	playlist.MediaType = m3u8.VOD
	playlist.SeqNo = segments[0].Number
	if initURI != "" {
		playlist.SetDefaultMap(initURI, 0, 0)
	}

	for _, seg := range segments {
		if err := playlist.Append(seg.URL, seg.Duration(), ""); err != nil {
			return "", fmt.Errorf("failed to append segment %d: %w", seg.Number, err)
		}
	}
	playlist.Close()

	return playlist.String(), nil
}
