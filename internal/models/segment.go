package models

// Segment represents a media segment with its essential properties.
// This struct is used across different packages to represent one addressable chunk of media.
type Segment struct {
	// Number is the segment number substituted for $Number$.
	Number uint64
	// Time is the start time in the timescale of its representation, substituted for $Time$.
	Time uint64
	// Start and End bound the segment in seconds.
	Start float64
	End   float64
	// URL is the expanded media URL, resolved against the base URL when one is known.
	URL string
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}
