// Copyright 2022 GearnsC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ffwrap reads mastering display metadata from a video file by
// running ffprobe over its first decoded frames.
package ffwrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
	"github.com/gitgerby/convertmdinfo/internal/pkg/mdinfo"
	"github.com/google/logger"
	"golang.org/x/sync/errgroup"
)

var (
	ffquiet  = []string{"-hide_banner", "-loglevel", "error"}
	ffcommon = []string{"-probesize", "6000M", "-analyzeduration", "6000M"}
)

// -read_intervals counts packets, and a decoder with reordering delay emits
// fewer frames than it was fed. packetSlack extra packets let the decoder
// produce frameLimit frames.
const packetSlack = 16

// Prober runs ffprobe to extract mastering display metadata.
type Prober struct {
	ffprobebinary string
	command       func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewProber returns a Prober using the ffprobe binary at path.
func NewProber(path string) *Prober {
	return &Prober{ffprobebinary: path, command: exec.CommandContext}
}

// ExtractMasteringDisplay returns the mastering display metadata of the
// first frame among the first frameLimit video frames of path that carries
// both primaries and luminance.
//
// Every failure is an mderr.Extraction error wrapping an *ExtractionError.
func (p *Prober) ExtractMasteringDisplay(ctx context.Context, path string, frameLimit int) (mdinfo.DisplayPrimaries, mdinfo.LuminanceRange, error) {
	if frameLimit <= 0 {
		return mdinfo.DisplayPrimaries{}, mdinfo.LuminanceRange{}, mderr.Bug("frame limit %d is not positive", frameLimit)
	}
	if _, err := os.Stat(path); err != nil {
		return mdinfo.DisplayPrimaries{}, mdinfo.LuminanceRange{}, extractionError(FileOpen, path, err, "ffprobe could not open file")
	}
	if err := p.verifyStream(ctx, path); err != nil {
		return mdinfo.DisplayPrimaries{}, mdinfo.LuminanceRange{}, err
	}

	frames, err := p.probeFrames(ctx, path, frameLimit)
	if err != nil {
		return mdinfo.DisplayPrimaries{}, mdinfo.LuminanceRange{}, err
	}
	if len(frames) > frameLimit {
		frames = frames[:frameLimit]
	}
	for _, f := range frames {
		for _, sd := range f.Side_data_list {
			if !strings.EqualFold(sd.Side_data_type, SideDataTypeMastering) || !sd.complete() {
				continue
			}
			prim, lum, err := parseColorSideInfo(sd)
			if err != nil {
				return mdinfo.DisplayPrimaries{}, mdinfo.LuminanceRange{}, extractionError(Decode, path, err, "ffprobe returned malformed mastering display metadata")
			}
			return prim, lum, nil
		}
	}
	return mdinfo.DisplayPrimaries{}, mdinfo.LuminanceRange{}, extractionError(NotFound, path,
		fmt.Errorf("no mastering display metadata in the first %d frames", frameLimit),
		"Video does not contain mastering display metadata")
}

// verifyStream checks that the first video stream of path is HEVC.
func (p *Prober) verifyStream(ctx context.Context, path string) error {
	args := append([]string{}, ffquiet...)
	args = append(args, ffcommon...)
	args = append(args,
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,codec_type",
		"-print_format", "json",
		"-i", path,
	)
	logger.Infof("probing video stream, calling ffprobe with args: %#v", args)

	var serr bytes.Buffer
	cmd := p.command(ctx, p.ffprobebinary, args...)
	cmd.Stderr = &serr
	o, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return extractionError(FileOpen, path, fmt.Errorf("%v: %s", err, strings.TrimSpace(serr.String())), "ffprobe could not open file")
		}
		return extractionError(DecoderInit, path, err, "Could not start ffprobe")
	}

	var ffp FfprobeOutput
	if err := json.Unmarshal(o, &ffp); err != nil {
		return extractionError(Decode, path, fmt.Errorf("unmarshal stream info %q: %w", o, err), "ffprobe returned unreadable stream info")
	}
	if len(ffp.Streams) == 0 {
		return extractionError(NoVideoStream, path, nil, "No video stream in input file")
	}
	if c := ffp.Streams[0].Codec; !strings.EqualFold(c, hevcCodecName) {
		return extractionError(UnsupportedCodec, path, fmt.Errorf("codec %q", c), "Video stream in input file is not an HEVC stream")
	}
	return nil
}

// probeFrames decodes the video frames of the first frameLimit+packetSlack
// packets and returns their side data. stdout and stderr are drained concurrently so a chatty ffprobe
// cannot block on a full pipe.
func (p *Prober) probeFrames(ctx context.Context, path string, frameLimit int) ([]FfprobeFrame, error) {
	args := append([]string{}, ffquiet...)
	args = append(args, ffcommon...)
	args = append(args,
		"-select_streams", "v:0",
		"-read_intervals", fmt.Sprintf("%%+#%d", frameLimit+packetSlack),
		"-show_frames",
		"-show_entries", "frame=side_data_list",
		"-print_format", "json",
		"-i", path,
	)
	logger.Infof("reading frame side data, calling ffprobe with args: %#v", args)

	cmd := p.command(ctx, p.ffprobebinary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, extractionError(DecoderInit, path, err, "Could not start ffprobe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, extractionError(DecoderInit, path, err, "Could not start ffprobe")
	}
	if err := cmd.Start(); err != nil {
		return nil, extractionError(DecoderInit, path, err, "Could not start ffprobe")
	}

	var (
		ffp  FfprobeOutput
		serr bytes.Buffer
		g    errgroup.Group
	)
	g.Go(func() error {
		err := json.NewDecoder(stdout).Decode(&ffp)
		if _, cerr := io.Copy(io.Discard, stdout); err == nil {
			err = cerr
		}
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&serr, stderr)
		return err
	})
	readErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, extractionError(Decode, path, ctx.Err(), "ffprobe was interrupted")
		}
		return nil, extractionError(Decode, path, fmt.Errorf("%v: %s", err, strings.TrimSpace(serr.String())), "ffprobe returned decoding error")
	}
	if readErr != nil {
		return nil, extractionError(Decode, path, readErr, "ffprobe returned unreadable frame info")
	}
	return ffp.Frames, nil
}

// evalFraction evaluates a rational such as "13250/50000" printed by
// ffprobe.
func evalFraction(frac string) (float64, error) {
	splits := strings.Split(frac, "/")
	if len(splits) != 2 {
		return 0, fmt.Errorf("invalid fraction: %s", frac)
	}
	n, err := strconv.ParseFloat(splits[0], 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(splits[1], 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator in %s", frac)
	}
	return n / d, nil
}

// parseColorSideInfo converts ffprobe's mastering display side data.
func parseColorSideInfo(csi ColorSideInfo) (mdinfo.DisplayPrimaries, mdinfo.LuminanceRange, error) {
	point := func(name, xs, ys string) (*mdinfo.Point, error) {
		x, err := evalFraction(xs)
		if err != nil {
			return nil, fmt.Errorf("failed to eval %s x: %v", name, err)
		}
		y, err := evalFraction(ys)
		if err != nil {
			return nil, fmt.Errorf("failed to eval %s y: %v", name, err)
		}
		return &mdinfo.Point{X: x, Y: y}, nil
	}

	var (
		prim mdinfo.DisplayPrimaries
		lum  mdinfo.LuminanceRange
		err  error
	)
	if prim.R, err = point("red", csi.Red_x, csi.Red_y); err != nil {
		return prim, lum, err
	}
	if prim.G, err = point("green", csi.Green_x, csi.Green_y); err != nil {
		return prim, lum, err
	}
	if prim.B, err = point("blue", csi.Blue_x, csi.Blue_y); err != nil {
		return prim, lum, err
	}
	if prim.WhitePoint, err = point("wp", csi.White_point_x, csi.White_point_y); err != nil {
		return prim, lum, err
	}
	if lum.Min, err = evalFraction(csi.Min_luminance); err != nil {
		return prim, lum, fmt.Errorf("failed to eval minl: %v", err)
	}
	if lum.Max, err = evalFraction(csi.Max_luminance); err != nil {
		return prim, lum, fmt.Errorf("failed to eval maxl: %v", err)
	}
	return prim, lum, nil
}
