package dash

import (
	"fmt"
	"mpdkit/internal/models"
	"net/url"
)

// resolveURL resolves a path against a base URL, handling potential errors.
func resolveURL(base *url.URL, path string) (*url.URL, error) {
	resolvedPath, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse path '%s': %w", path, err)
	}
	return base.ResolveReference(resolvedPath), nil
}

// ResolveSegmentURL resolves an expanded template path against baseURL.
// An empty baseURL returns the path unchanged.
func ResolveSegmentURL(baseURL, path string) (string, error) {
	if baseURL == "" {
		return path, nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL '%s': %w", baseURL, err)
	}
	resolved, err := resolveURL(base, path)
	if err != nil {
		return "", err
	}
	return resolved.String(), nil
}

// InitSegmentURL expands an initialization template for one representation.
func InitSegmentURL(baseURL, initialization string, tv TemplateValues) (string, error) {
	initPath := FillURITemplate(initialization, TemplateValues{
		RepresentationID: tv.RepresentationID,
		Bandwidth:        tv.Bandwidth,
	})
	return ResolveSegmentURL(baseURL, initPath)
}

// SegmentsFromTimeline processes a timeline and returns a flat list of
// segments with their media URLs. Segment i gets number startNumber+i and the
// raw start time of its interval in timescale units; both are substituted in
// addition to any identifiers already set in tv.
func SegmentsFromTimeline(baseURL, media string, tv TemplateValues, startNumber uint64, timeline []Interval) ([]models.Segment, error) {
	segments := make([]models.Segment, 0, len(timeline))
	for i, iv := range timeline {
		number := startNumber + uint64(i)
		rawTime := uint64(max(iv.RawStart, 0))

		values := tv
		values.Number = &number
		values.Time = &rawTime

		segURL, err := ResolveSegmentURL(baseURL, FillURITemplate(media, values))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve segment %d: %w", number, err)
		}

		segments = append(segments, models.Segment{
			Number: number,
			Time:   rawTime,
			Start:  iv.Start,
			End:    iv.End,
			URL:    segURL,
		})
	}

	return segments, nil
}
