package dash_test

import (
	"bytes"
	"fmt"
	"math"
	"mpdkit/internal/dash"
	"mpdkit/internal/logger"
	"mpdkit/internal/xmltree"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// point builds a TimePoint; negative t or d mean absent, as does a nil r.
func point(t, d int64, r *int64) dash.TimePoint {
	var p dash.TimePoint
	if t >= 0 {
		p.Start = ptr(t)
	}
	if d >= 0 {
		p.Duration = ptr(d)
	}
	p.Repeat = r
	return p
}

// segmentTimeline renders points as a SegmentTimeline element and locates it
// the way a manifest parser would.
func segmentTimeline(t *testing.T, points []dash.TimePoint) dash.Element {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\"?>\n<SegmentTimeline>\n")
	for _, p := range points {
		sb.WriteString("<S")
		if p.Start != nil {
			fmt.Fprintf(&sb, ` t="%d"`, *p.Start)
		}
		if p.Duration != nil {
			fmt.Fprintf(&sb, ` d="%d"`, *p.Duration)
		}
		if p.Repeat != nil {
			fmt.Fprintf(&sb, ` r="%d"`, *p.Repeat)
		}
		sb.WriteString(" />\n")
	}
	sb.WriteString("</SegmentTimeline>")

	doc, err := xmltree.ParseString(sb.String())
	require.NoError(t, err)
	el, ok := dash.FindChild(doc, "SegmentTimeline")
	require.True(t, ok)
	return el
}

func checkTimeline(t *testing.T, points []dash.TimePoint, want []dash.Interval, timescale, periodDuration float64) {
	t.Helper()

	got := dash.CreateTimeline(segmentTimeline(t, points), timescale, periodDuration)
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(dash.Interval{}, "RawStart")); diff != "" {
		t.Fatalf("timeline mismatch (-want +got):\n%s", diff)
	}
	assertContiguous(t, got)
	for i, iv := range got {
		assert.Equal(t, int64(math.Round(iv.Start*timescale)), iv.RawStart, "raw start of interval %d", i)
	}
}

func assertContiguous(t *testing.T, timeline []dash.Interval) {
	t.Helper()
	for i, iv := range timeline {
		assert.Greater(t, iv.End, iv.Start, "interval %d is empty", i)
		if i+1 < len(timeline) {
			assert.Equal(t, iv.End, timeline[i+1].Start, "gap after interval %d", i)
		}
	}
}

var inf = math.Inf(1)

func TestCreateTimeline(t *testing.T) {
	zero := ptr[int64](0)

	tests := []struct {
		name           string
		points         []dash.TimePoint
		want           []dash.Interval
		periodDuration float64
	}{
		{
			name:           "normal case",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 10, zero), point(20, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}, {Start: 20, End: 30}},
			periodDuration: inf,
		},
		{
			name:           "null start time",
			points:         []dash.TimePoint{point(0, 10, zero), point(-1, 10, zero), point(-1, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}, {Start: 20, End: 30}},
			periodDuration: inf,
		},
		{
			name:           "gaps",
			points:         []dash.TimePoint{point(0, 10, zero), point(15, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 15}, {Start: 15, End: 25}},
			periodDuration: inf,
		},
		{
			name:           "overlap",
			points:         []dash.TimePoint{point(0, 15, zero), point(10, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}},
			periodDuration: inf,
		},
		{
			name:           "repetitions",
			points:         []dash.TimePoint{point(0, 10, ptr[int64](5)), point(60, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}, {Start: 20, End: 30}, {Start: 30, End: 40}, {Start: 40, End: 50}, {Start: 50, End: 60}, {Start: 60, End: 70}},
			periodDuration: inf,
		},
		{
			name:           "null repeat",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 10, nil), point(20, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}, {Start: 20, End: 30}},
			periodDuration: inf,
		},
		{
			name:           "repetitions with gap",
			points:         []dash.TimePoint{point(0, 10, ptr[int64](2)), point(35, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}, {Start: 20, End: 35}, {Start: 35, End: 45}},
			periodDuration: inf,
		},
		{
			name:           "negative repetitions",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 10, ptr[int64](-1)), point(40, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}, {Start: 20, End: 30}, {Start: 30, End: 40}, {Start: 40, End: 50}},
			periodDuration: inf,
		},
		{
			name:           "negative repetitions with uneven border",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 10, ptr[int64](-1)), point(45, 5, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}, {Start: 20, End: 30}, {Start: 30, End: 40}, {Start: 40, End: 45}, {Start: 45, End: 50}},
			periodDuration: inf,
		},
		{
			name:           "negative repetitions with bad next start time",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 10, ptr[int64](-1)), point(5, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}},
			periodDuration: inf,
		},
		{
			name:           "negative repetitions with null next start time",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 10, ptr[int64](-1)), point(-1, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}},
			periodDuration: inf,
		},
		{
			name:           "negative repetitions at end",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 5, ptr[int64](-1))},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 15}, {Start: 15, End: 20}, {Start: 20, End: 25}},
			periodDuration: 25,
		},
		{
			name:           "negative repetitions at end clamp to period",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 4, ptr[int64](-1))},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 14}, {Start: 14, End: 18}, {Start: 18, End: 22}, {Start: 22, End: 25}},
			periodDuration: 25,
		},
		{
			name:           "negative repetitions at end without period length",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 5, ptr[int64](-1))},
			want:           []dash.Interval{{Start: 0, End: 10}},
			periodDuration: inf,
		},
		{
			name:           "negative repetitions at end with bad period length",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 10, zero), point(25, 5, ptr[int64](-1))},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}},
			periodDuration: 20,
		},
		{
			name:           "bad next start falls back to period length",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 10, ptr[int64](-1)), point(5, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 5}, {Start: 5, End: 15}},
			periodDuration: 30,
		},
		{
			name: "ignores elements after null duration",
			points: []dash.TimePoint{
				point(0, 10, zero), point(10, 10, zero), point(20, -1, zero), point(30, 10, zero), point(40, 10, zero),
			},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}},
			periodDuration: inf,
		},
		{
			name:           "zero duration stops",
			points:         []dash.TimePoint{point(0, 10, zero), point(10, 0, zero), point(10, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}},
			periodDuration: inf,
		},
		{
			name:           "first start is honoured",
			points:         []dash.TimePoint{point(100, 10, ptr[int64](1))},
			want:           []dash.Interval{{Start: 100, End: 110}, {Start: 110, End: 120}},
			periodDuration: inf,
		},
		{
			name:           "overlap larger than previous segment",
			points:         []dash.TimePoint{point(0, 10, ptr[int64](2)), point(15, 10, zero)},
			want:           []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 15}, {Start: 15, End: 25}},
			periodDuration: inf,
		},
		{
			name:           "empty timeline",
			points:         nil,
			want:           nil,
			periodDuration: inf,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checkTimeline(t, tc.points, tc.want, 1, tc.periodDuration)
		})
	}
}

func TestCreateTimelineScenarios(t *testing.T) {
	// Open repeat resolved against the period duration.
	checkTimeline(t,
		[]dash.TimePoint{point(0, 10, ptr[int64](0)), point(10, 5, ptr[int64](-1))},
		[]dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 15}, {Start: 15, End: 20}, {Start: 20, End: 25}},
		1, 25)

	// Processing stops at the element without a duration.
	checkTimeline(t,
		[]dash.TimePoint{point(0, 10, ptr[int64](0)), point(10, 10, ptr[int64](0)), point(20, -1, ptr[int64](0)), point(30, 10, ptr[int64](0))},
		[]dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 20}},
		1, inf)
}

func TestCreateTimelineTimescale(t *testing.T) {
	points := []dash.TimePoint{
		point(90000, 180000, ptr[int64](1)),
		point(-1, 90000, ptr[int64](-1)),
	}
	want := []dash.Interval{{Start: 1, End: 3}, {Start: 3, End: 5}, {Start: 5, End: 6}, {Start: 6, End: 7}}
	checkTimeline(t, points, want, 90000, 7)

	// A non-positive timescale behaves like 1.
	got := dash.BuildTimeline([]dash.TimePoint{point(0, 10, nil)}, 0, inf)
	assert.Equal(t, []dash.Interval{{Start: 0, End: 10, RawStart: 0}}, got)
}

func TestTimePointsOf(t *testing.T) {
	doc, err := xmltree.ParseString(`<SegmentTimeline><S t="5" d="10" r="-1"/><S d="7"/><S t="x" d="-3" r="2.0"/></SegmentTimeline>`)
	require.NoError(t, err)
	el, ok := dash.FindChild(doc, "SegmentTimeline")
	require.True(t, ok)

	want := []dash.TimePoint{
		{Start: ptr[int64](5), Duration: ptr[int64](10), Repeat: ptr[int64](-1)},
		{Duration: ptr[int64](7)},
		{Repeat: ptr[int64](2)},
	}
	if diff := cmp.Diff(want, dash.TimePointsOf(el)); diff != "" {
		t.Fatalf("time points mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTimelineWarnings(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger("warn", &buf)

	got := dash.BuildTimeline([]dash.TimePoint{
		point(0, 10, nil),
		point(20, 10, nil),
		point(30, -1, nil),
	}, 1, inf, dash.WithLogger(log))

	assert.Equal(t, []dash.Interval{{Start: 0, End: 20, RawStart: 0}, {Start: 20, End: 30, RawStart: 20}}, got)
	out := buf.String()
	assert.Contains(t, out, "gap or overlap")
	assert.Contains(t, out, "has no duration")
}

func TestBuildTimelineInvariantsOnMalformedInput(t *testing.T) {
	starts := []int64{-1, 0, 3, 7, 10, 25}
	durations := []int64{-1, 0, 1, 4, 10}
	repeats := []*int64{nil, ptr[int64](-1), ptr[int64](0), ptr[int64](2)}

	// Every combination of two points, bounded and unbounded.
	for _, t1 := range starts {
		for _, d1 := range durations {
			for _, r1 := range repeats {
				for _, t2 := range starts {
					for _, r2 := range repeats {
						points := []dash.TimePoint{point(t1, d1, r1), point(t2, 5, r2)}
						assertContiguous(t, dash.BuildTimeline(points, 1, inf))
						assertContiguous(t, dash.BuildTimeline(points, 1, 40))
					}
				}
			}
		}
	}
}

func TestIntervalAt(t *testing.T) {
	timeline := []dash.Interval{{Start: 0, End: 10}, {Start: 10, End: 15}, {Start: 15, End: 20}}

	tests := []struct {
		name string
		at   float64
		want int
	}{
		{"start", 0, 0},
		{"inside first", 9.99, 0},
		{"boundary belongs to next", 10, 1},
		{"last", 17, 2},
		{"before timeline", -5, 0},
		{"live edge", 120, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := dash.IntervalAt(timeline, tc.at)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	_, ok := dash.IntervalAt(nil, 0)
	assert.False(t, ok)
}

func TestBuildTimelineKeepsRawTicks(t *testing.T) {
	got := dash.BuildTimeline([]dash.TimePoint{point(0, 1001, ptr[int64](99999))}, 30000, inf)
	require.Len(t, got, 100000)
	for k, iv := range got {
		raw := int64(k) * 1001
		if iv.RawStart != raw || iv.Start != float64(raw)/30000 || iv.End != float64(raw+1001)/30000 {
			t.Fatalf("interval %d = %+v, want start %d ticks", k, iv, raw)
		}
	}

	// An open repeat ends exactly on the next explicit start.
	got = dash.BuildTimeline([]dash.TimePoint{
		point(1234567890123, 1001, ptr[int64](-1)),
		point(1234567890123+10*1001-500, 1001, nil),
	}, 30000, inf)
	require.Len(t, got, 11)
	assert.Equal(t, int64(1234567890123+9*1001), got[9].RawStart)
	assert.Equal(t, got[10].Start, got[9].End)
	assert.Equal(t, int64(1234567890123+10*1001-500), got[10].RawStart)
}

func TestBuildTimelineBounds(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger("warn", &buf)

	got := dash.BuildTimeline([]dash.TimePoint{point(0, 1, ptr[int64](math.MaxInt64))}, 1, inf, dash.WithLogger(log))
	assert.Len(t, got, dash.MaxTimelineSegments)
	assert.Contains(t, buf.String(), "segments, ignoring the rest")

	got = dash.BuildTimeline([]dash.TimePoint{point(0, 1, ptr[int64](-1))}, 1, 1e12)
	assert.Len(t, got, dash.MaxTimelineSegments)

	buf.Reset()
	const late = math.MaxInt64 - 1500000000000000000
	got = dash.BuildTimeline([]dash.TimePoint{point(late, 1000000000000000000, ptr[int64](5))}, 1, inf, dash.WithLogger(log))
	require.Len(t, got, 1)
	assert.Equal(t, int64(late), got[0].RawStart)
	assert.Contains(t, buf.String(), "largest representable time")
}
