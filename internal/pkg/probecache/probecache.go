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

// Package probecache remembers the mastering display metadata found in a
// video file so repeated runs do not decode it again.
package probecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gitgerby/convertmdinfo/internal/pkg/mdinfo"
	"github.com/google/logger"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS probe_cache (
	path           TEXT NOT NULL,
	size           INTEGER NOT NULL,
	mtime          INTEGER NOT NULL,
	frame_limit    INTEGER NOT NULL,
	master_display TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	PRIMARY KEY (path, size, mtime, frame_limit)
);`

// Key identifies one probe of one version of a file.
type Key struct {
	Path       string
	Size       int64
	ModTime    int64
	FrameLimit int
}

// KeyFor builds the cache key of path as it is on disk now.
func KeyFor(path string, frameLimit int) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return Key{}, err
	}
	return Key{Path: abs, Size: fi.Size(), ModTime: fi.ModTime().UnixNano(), FrameLimit: frameLimit}, nil
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	s, err := newStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func newStore(db *sql.DB) (*Store, error) {
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached display for k. found is false on a miss. A row
// that no longer decodes is reported as an error and as a miss.
func (s *Store) Get(ctx context.Context, k Key) (q mdinfo.QuantizedDisplay, found bool, err error) {
	var encoded string
	row := s.db.QueryRowContext(ctx,
		`SELECT master_display FROM probe_cache WHERE path = ? AND size = ? AND mtime = ? AND frame_limit = ?`,
		k.Path, k.Size, k.ModTime, k.FrameLimit)
	if err := row.Scan(&encoded); errors.Is(err, sql.ErrNoRows) {
		logger.Infof("probe cache miss for %q", k.Path)
		return mdinfo.QuantizedDisplay{}, false, nil
	} else if err != nil {
		return mdinfo.QuantizedDisplay{}, false, fmt.Errorf("query probe cache: %w", err)
	}

	q, err = mdinfo.ParseMasterDisplay(encoded)
	if err != nil {
		return mdinfo.QuantizedDisplay{}, false, fmt.Errorf("cached entry for %q: %w", k.Path, err)
	}
	logger.Infof("probe cache hit for %q: %s", k.Path, encoded)
	return q, true, nil
}

// Put stores q for k, replacing an older entry.
func (s *Store) Put(ctx context.Context, k Key, q mdinfo.QuantizedDisplay) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO probe_cache (path, size, mtime, frame_limit, master_display, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		k.Path, k.Size, k.ModTime, k.FrameLimit, q.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store probe result: %v, rollback result: %v", err, tx.Rollback())
	}
	return tx.Commit()
}
