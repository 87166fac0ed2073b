// Copyright 2022 GearnsC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"

	"github.com/gitgerby/convertmdinfo/internal/pkg/config"
	"github.com/gitgerby/convertmdinfo/internal/pkg/eval"
	"github.com/gitgerby/convertmdinfo/internal/pkg/ffwrap"
	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
	"github.com/gitgerby/convertmdinfo/internal/pkg/mdinfo"
	"github.com/gitgerby/convertmdinfo/internal/pkg/priority"
	"github.com/gitgerby/convertmdinfo/internal/pkg/probecache"
	"github.com/google/logger"
)

type extractor interface {
	ExtractMasteringDisplay(ctx context.Context, path string, frameLimit int) (mdinfo.DisplayPrimaries, mdinfo.LuminanceRange, error)
}

var newExtractor = func(ffprobePath string) extractor {
	return ffwrap.NewProber(ffprobePath)
}

func quantize(p mdinfo.DisplayPrimaries, l mdinfo.LuminanceRange) (mdinfo.QuantizedDisplay, error) {
	if err := mdinfo.Validate(p, l); err != nil {
		return mdinfo.QuantizedDisplay{}, err
	}
	return mdinfo.Convert(p, l)
}

func manualMetadata(res *eval.Result) (mdinfo.QuantizedDisplay, error) {
	return quantize(res.Primaries, res.Luminance)
}

// openCache returns nil when caching is disabled or the database is
// unusable; the run then probes the file as if the cache did not exist.
func openCache(cfg *config.MDConfig) *probecache.Store {
	if *cfg.CachePath == "" {
		return nil
	}
	s, err := probecache.Open(*cfg.CachePath)
	if err != nil {
		logger.Warningf("probe cache disabled: %v", err)
		return nil
	}
	return s
}

func automaticMetadata(ctx context.Context, cfg *config.MDConfig, res *eval.Result) (mdinfo.QuantizedDisplay, error) {
	if res.SourceFile == "" {
		return mdinfo.QuantizedDisplay{}, mderr.New(mderr.IncompleteInput, "No input file specified for ffmpeg")
	}
	if res.Dynamic {
		return mdinfo.QuantizedDisplay{}, mderr.New(mderr.NotImplemented, "dynamic metadata support is not implemented yet")
	}

	var key probecache.Key
	cache := openCache(cfg)
	if cache != nil {
		defer cache.Close()
		k, err := probecache.KeyFor(res.SourceFile, *cfg.FrameLimit)
		if err != nil {
			logger.Warningf("probe cache skipped for %q: %v", res.SourceFile, err)
			cache = nil
		} else {
			key = k
			q, found, err := cache.Get(ctx, key)
			if err != nil {
				logger.Warningf("probe cache lookup failed: %v", err)
			}
			if found {
				return q, nil
			}
		}
	}

	if *cfg.LowPriority {
		if err := priority.Lower(); err != nil {
			logger.Warningf("failed to lower process priority: %v", err)
		}
	}

	pctx, cancel := context.WithTimeout(ctx, *cfg.ProbeTimeout)
	defer cancel()
	p, l, err := newExtractor(*cfg.FfprobePath).ExtractMasteringDisplay(pctx, res.SourceFile, *cfg.FrameLimit)
	if err != nil {
		return mdinfo.QuantizedDisplay{}, err
	}
	q, err := quantize(p, l)
	if err != nil {
		return mdinfo.QuantizedDisplay{}, err
	}

	if cache != nil {
		if err := cache.Put(ctx, key, q); err != nil {
			logger.Warningf("probe cache store failed: %v", err)
		}
	}
	return q, nil
}
