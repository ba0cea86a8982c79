package main

import (
	"fmt"
	"io"
	"math"
	"mpdkit/internal/config"
	"mpdkit/internal/dash"
	"mpdkit/internal/hls"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentManifests bounds how many manifests are parsed at once.
const maxConcurrentManifests = 4

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	var (
		format string
		at     float64
	)

	cmd := &cobra.Command{
		Use:   "timeline FILE...",
		Short: "Expand the SegmentTimelines of one or more MPD files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *ctx.cfg
			if format != "" {
				cfg.Format = format
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			results := make([][]track, len(args))
			g := new(errgroup.Group)
			g.SetLimit(maxConcurrentManifests)
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					tracks, err := loadManifest(path, &cfg, ctx.log)
					if err != nil {
						return err
					}
					results[i] = tracks
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if cmd.Flags().Changed("at") {
				for _, tracks := range results {
					for i := range tracks {
						tracks[i] = tracks[i].at(at)
					}
				}
			}

			out := cmd.OutOrStdout()
			for i, path := range args {
				if err := writeTracks(out, path, results[i], cfg.Format); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (text, hls)")
	cmd.Flags().Float64Var(&at, "at", 0, "Only show the segment playing at this presentation time, in seconds")
	return cmd
}

// at narrows t to the single segment playing at presentation time seconds.
func (t track) at(seconds float64) track {
	i, ok := dash.IntervalAt(t.Timeline, seconds)
	if !ok {
		return t
	}
	t.Timeline = t.Timeline[i : i+1]
	t.Segments = t.Segments[i : i+1]
	return t
}

func writeTracks(w io.Writer, path string, tracks []track, format string) error {
	var variants []hls.Variant
	for _, t := range tracks {
		switch format {
		case config.FormatHLS:
			if len(t.Segments) == 0 {
				fmt.Fprintf(w, "# %s period=%s representation=%s: no segments\n", path, t.PeriodID, t.RepresentationID)
				continue
			}
			playlist, err := hls.GenerateMediaPlaylist(t.Segments, t.InitURL)
			if err != nil {
				return fmt.Errorf("representation %s: %w", t.RepresentationID, err)
			}
			fmt.Fprintf(w, "# %s period=%s representation=%s\n%s", path, t.PeriodID, t.RepresentationID, playlist)
			variants = append(variants, t.variant())
		default:
			fmt.Fprintf(w, "%s period=%s type=%s representation=%s segments=%d\n",
				path, t.PeriodID, t.ContentType, t.RepresentationID, len(t.Segments))
			if t.InitURL != "" {
				fmt.Fprintf(w, "  init %s\n", t.InitURL)
			}
			for _, seg := range t.Segments {
				fmt.Fprintf(w, "  #%d [%g, %g) %s\n", seg.Number, seg.Start, seg.End, seg.URL)
			}
		}
	}

	if len(variants) > 0 {
		master, err := hls.GenerateMasterPlaylist(variants)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# %s master\n%s", path, master)
	}
	return nil
}

// variant describes the media playlist of t for a master playlist.
func (t track) variant() hls.Variant {
	return hls.Variant{
		URI:       fmt.Sprintf("%s/%s/%s/playlist.m3u8", t.PeriodID, t.ContentType, t.RepresentationID),
		Bandwidth: uint32(min(t.Bandwidth, math.MaxUint32)),
		Codecs:    t.Codecs,
		Width:     t.Width,
		Height:    t.Height,
		FrameRate: t.FrameRate,
	}
}
