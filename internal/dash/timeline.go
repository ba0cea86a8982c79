package dash

import (
	"math"
	"mpdkit/internal/logger"
	"sort"
)

// GapOverlapTolerance is the largest gap or overlap, in seconds, between two
// consecutive S elements that is reconciled without a warning.
const GapOverlapTolerance = 1.0 / 15

// TimePoint is one S element of a SegmentTimeline. Nil fields were absent.
type TimePoint struct {
	Start    *int64 // t
	Duration *int64 // d
	Repeat   *int64 // r, absent means 0
}

// MaxTimelineSegments bounds how many intervals a single timeline expands to.
const MaxTimelineSegments = 1 << 20

// Interval is a half-open [Start, End) segment time range in seconds.
type Interval struct {
	Start float64
	End   float64
	// RawStart is Start in timescale units. It stays exact where Start is rounded.
	RawStart int64
}

type timelineOptions struct {
	log logger.Logger
}

// TimelineOption configures CreateTimeline and BuildTimeline.
type TimelineOption func(*timelineOptions)

// WithLogger reports timeline inconsistencies to log.
func WithLogger(log logger.Logger) TimelineOption {
	return func(o *timelineOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// TimePointsOf reads the S children of a SegmentTimeline element.
func TimePointsOf(segmentTimeline Element) []TimePoint {
	elems := FindChildren(segmentTimeline, "S")
	points := make([]TimePoint, 0, len(elems))
	for _, s := range elems {
		var p TimePoint
		if t, ok := ParseAttr(s, "t", ParseNonNegativeInt); ok {
			p.Start = &t
		}
		if d, ok := ParseAttr(s, "d", ParseNonNegativeInt); ok {
			p.Duration = &d
		}
		if r, ok := ParseAttr(s, "r", ParseInt); ok {
			p.Repeat = &r
		}
		points = append(points, p)
	}
	return points
}

// CreateTimeline expands a SegmentTimeline element into contiguous intervals.
// timescale divides every t and d value; periodDuration, in seconds, bounds
// an open-ended repeat on the last S element and may be +Inf when unknown.
func CreateTimeline(segmentTimeline Element, timescale, periodDuration float64, opts ...TimelineOption) []Interval {
	return BuildTimeline(TimePointsOf(segmentTimeline), timescale, periodDuration, opts...)
}

// BuildTimeline expands time points into contiguous intervals.
//
// An explicit start always wins: a gap before it stretches the previous
// interval and an overlap truncates it. A point without a duration ends the
// timeline, as does a negative repeat whose end cannot be resolved from the
// next point's start or from periodDuration. Times are accumulated in
// timescale units and only converted to seconds per interval.
func BuildTimeline(points []TimePoint, timescale, periodDuration float64, opts ...TimelineOption) []Interval {
	o := timelineOptions{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if timescale <= 0 || math.IsNaN(timescale) || math.IsInf(timescale, 0) {
		timescale = 1
	}
	seconds := func(ticks int64) float64 { return float64(ticks) / timescale }

	var timeline []Interval
	var cursor int64
	if len(points) > 0 && points[0].Start != nil {
		cursor = *points[0].Start
	}

expand:
	for i, p := range points {
		if p.Duration == nil || *p.Duration <= 0 {
			o.log.Warnf("S element %d has no duration, ignoring the remaining %d elements", i, len(points)-i)
			break
		}
		d := *p.Duration

		start := cursor
		if p.Start != nil {
			start = *p.Start
		}

		var repeat int64
		if p.Repeat != nil {
			repeat = *p.Repeat
		}

		var bound *repeatBound
		if repeat < 0 {
			b, ok := repeatTarget(points, i, start, d, timescale, periodDuration)
			if !ok {
				o.log.Warnf("S element %d repeats indefinitely but its end cannot be resolved", i)
				break
			}
			bound = &b
			repeat = b.count - 1
		}

		if n := len(timeline); n > 0 && seconds(start) != timeline[n-1].End {
			if delta := seconds(start) - timeline[n-1].End; math.Abs(delta) >= GapOverlapTolerance {
				o.log.Warnf("S element %d leaves a gap or overlap of %.3fs, adjusting previous segment", i, delta)
			}
			timeline = reconcile(timeline, start, seconds(start))
		}
		cursor = start

		for j := int64(0); j <= repeat; j++ {
			if len(timeline) >= MaxTimelineSegments {
				o.log.Warnf("Timeline reached %d segments, ignoring the rest", MaxTimelineSegments)
				break expand
			}
			if cursor > math.MaxInt64-d {
				o.log.Warnf("S element %d runs past the largest representable time, ignoring the rest", i)
				break expand
			}
			next := cursor + d
			iv := Interval{Start: seconds(cursor), End: seconds(next), RawStart: cursor}
			if bound != nil && j == repeat {
				iv.End = math.Min(iv.End, bound.seconds)
				next = min(next, bound.ticks)
			}
			if iv.End <= iv.Start {
				break
			}
			timeline = append(timeline, iv)
			cursor = next
		}
	}

	return timeline
}

// repeatBound is where an open-ended repeat stops.
type repeatBound struct {
	seconds float64
	ticks   int64
	count   int64
}

// repeatTarget resolves where an open-ended repeat starting at start stops and
// how many segments of length d it takes to reach that point.
func repeatTarget(points []TimePoint, i int, start, d int64, timescale, periodDuration float64) (repeatBound, bool) {
	if i+1 < len(points) && points[i+1].Start != nil && *points[i+1].Start > start {
		next := *points[i+1].Start
		span := uint64(next) - uint64(start)
		count := (span-1)/uint64(d) + 1
		return repeatBound{
			seconds: float64(next) / timescale,
			ticks:   next,
			count:   int64(min(count, MaxTimelineSegments)),
		}, true
	}

	if math.IsInf(periodDuration, 0) || math.IsNaN(periodDuration) {
		return repeatBound{}, false
	}
	target := periodDuration * timescale
	if target <= float64(start) {
		return repeatBound{}, false
	}
	ticks := int64(math.MaxInt64)
	if c := math.Ceil(target); c < math.MaxInt64 {
		ticks = int64(c)
	}
	count := math.Min(math.Ceil((target-float64(start))/float64(d)), MaxTimelineSegments)
	return repeatBound{seconds: periodDuration, ticks: ticks, count: int64(count)}, true
}

// reconcile makes the timeline end exactly at start, dropping intervals that
// would become empty.
func reconcile(timeline []Interval, start int64, startSeconds float64) []Interval {
	for len(timeline) > 0 && timeline[len(timeline)-1].RawStart >= start {
		timeline = timeline[:len(timeline)-1]
	}
	if len(timeline) > 0 {
		timeline[len(timeline)-1].End = startSeconds
	}
	return timeline
}

// IntervalAt returns the index of the interval containing presentation time t.
// A time before the timeline maps to the first interval and a time past its
// end maps to the last one, the live edge. It fails only for an empty timeline.
func IntervalAt(timeline []Interval, t float64) (int, bool) {
	if len(timeline) == 0 {
		return 0, false
	}
	i := sort.Search(len(timeline), func(i int) bool { return t < timeline[i].End })
	if i == len(timeline) {
		return len(timeline) - 1, true
	}
	return i, true
}
