package main

import (
	"fmt"
	"math"
	"mpdkit/internal/config"
	"mpdkit/internal/dash"
	"mpdkit/internal/logger"
	"mpdkit/internal/models"
	"mpdkit/internal/xmltree"
	"os"
)

// track is one representation whose segments are addressed by a SegmentTimeline.
type track struct {
	PeriodID         string
	ContentType      string
	RepresentationID string
	Bandwidth        uint64
	Codecs           string
	Width            int64
	Height           int64
	FrameRate        float64
	InitURL          string
	Timeline         []dash.Interval
	Segments         []models.Segment
}

// loadManifest parses an MPD file and expands every SegmentTimeline it contains.
func loadManifest(path string, cfg *config.Config, log logger.Logger) ([]track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer f.Close()

	doc, err := xmltree.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	mpd, ok := dash.FindChild(doc, "MPD")
	if !ok {
		return nil, fmt.Errorf("manifest %s has no MPD root", path)
	}

	baseURL := cfg.BaseURL
	if b, ok := dash.FindChild(mpd, "BaseURL"); ok {
		if text, _ := dash.GetContents(b); text != "" {
			baseURL, err = dash.ResolveSegmentURL(baseURL, text)
			if err != nil {
				return nil, err
			}
		}
	}

	presentationDuration, ok := dash.ParseAttrDefault(mpd, "mediaPresentationDuration", dash.ParseDuration, cfg.PeriodDuration)
	if !ok {
		log.Warnf("Manifest %s has an invalid mediaPresentationDuration", path)
		presentationDuration = cfg.PeriodDuration
	}

	periods := dash.FindChildren(mpd, "Period")
	durations := periodDurations(periods, presentationDuration, log)

	var tracks []track
	for i, period := range periods {
		periodID, ok := period.Attr("id")
		if !ok {
			periodID = fmt.Sprintf("%d", i)
		}
		periodDuration := durations[i]

		periodBase := baseURL
		if b, ok := dash.FindChild(period, "BaseURL"); ok {
			if text, _ := dash.GetContents(b); text != "" {
				if periodBase, err = dash.ResolveSegmentURL(baseURL, text); err != nil {
					return nil, err
				}
			}
		}

		for _, as := range dash.FindChildren(period, "AdaptationSet") {
			contentType, _ := as.Attr("contentType")
			setTemplate, _ := dash.FindChild(as, "SegmentTemplate")

			for _, rep := range dash.FindChildren(as, "Representation") {
				tmpl := setTemplate
				if st, ok := dash.FindChild(rep, "SegmentTemplate"); ok {
					tmpl = st
				}
				if tmpl == nil {
					continue
				}
				segmentTimeline, ok := dash.FindChild(tmpl, "SegmentTimeline")
				if !ok {
					continue
				}

				t, err := expandTrack(periodBase, tmpl, segmentTimeline, rep, cfg, periodDuration, log)
				if err != nil {
					return nil, err
				}
				t.PeriodID = periodID
				t.ContentType = contentType
				if t.Codecs == "" {
					t.Codecs, _ = as.Attr("codecs")
				}
				tracks = append(tracks, t)
			}
		}
	}

	log.Debugf("Expanded %d tracks from %s", len(tracks), path)
	return tracks, nil
}

// periodDurations resolves how long each Period lasts, in seconds. A Period
// without a duration ends where the next one starts; the last one ends with the
// presentation. +Inf marks a length that cannot be resolved.
func periodDurations(periods []dash.Element, presentationDuration float64, log logger.Logger) []float64 {
	durations := make([]float64, len(periods))
	start := 0.0
	for i, period := range periods {
		if _, present := period.Attr("start"); present {
			s, ok := dash.ParseAttr(period, "start", dash.ParseDuration)
			if ok {
				start = s
			} else {
				log.Warnf("Period %d has an invalid start, assuming it follows the previous period", i)
			}
		}

		d := math.Inf(1)
		if _, present := period.Attr("duration"); present {
			if v, ok := dash.ParseAttr(period, "duration", dash.ParseDuration); ok {
				d = v
			} else {
				log.Warnf("Period %d has an invalid duration, treating it as unbounded", i)
			}
		} else if i+1 < len(periods) {
			if next, ok := dash.ParseAttr(periods[i+1], "start", dash.ParseDuration); ok && next > start {
				d = next - start
			}
		} else if !math.IsInf(presentationDuration, 0) && presentationDuration > start {
			d = presentationDuration - start
		}

		durations[i] = d
		start += d
	}
	return durations
}

func expandTrack(baseURL string, tmpl, segmentTimeline, rep dash.Element, cfg *config.Config, periodDuration float64, log logger.Logger) (track, error) {
	repID, _ := rep.Attr("id")

	timescale, ok := dash.ParseAttrDefault(tmpl, "timescale", dash.ParsePositiveInt, int64(cfg.Timescale))
	if !ok {
		log.Warnf("Representation %s has an invalid timescale, using %v", repID, cfg.Timescale)
		timescale = int64(cfg.Timescale)
	}
	startNumber, ok := dash.ParseAttrDefault(tmpl, "startNumber", dash.ParseNonNegativeInt, 1)
	if !ok {
		startNumber = 1
	}

	t := track{RepresentationID: repID}
	t.Codecs, _ = rep.Attr("codecs")
	t.Width, _ = dash.ParseAttr(rep, "width", dash.ParsePositiveInt)
	t.Height, _ = dash.ParseAttr(rep, "height", dash.ParsePositiveInt)
	t.FrameRate, _ = dash.ParseAttr(rep, "frameRate", dash.ParseFrameRate)

	tv := dash.TemplateValues{RepresentationID: &repID}
	if bw, ok := dash.ParseAttr(rep, "bandwidth", dash.ParseNonNegativeInt); ok {
		bandwidth := uint64(bw)
		t.Bandwidth = bandwidth
		tv.Bandwidth = &bandwidth
	}

	timeline := dash.CreateTimeline(segmentTimeline, float64(timescale), periodDuration,
		dash.WithLogger(logger.WithComponent(log, "timeline")))

	media, _ := tmpl.Attr("media")
	segments, err := dash.SegmentsFromTimeline(baseURL, media, tv, uint64(startNumber), timeline)
	if err != nil {
		return track{}, fmt.Errorf("representation %s: %w", repID, err)
	}

	t.Timeline = timeline
	t.Segments = segments
	if initialization, ok := tmpl.Attr("initialization"); ok {
		if t.InitURL, err = dash.InitSegmentURL(baseURL, initialization, tv); err != nil {
			return track{}, fmt.Errorf("representation %s: %w", repID, err)
		}
	}
	return t, nil
}
