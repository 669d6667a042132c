package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dsg-innosource/data-platform/pkg/period"
	log "github.com/sirupsen/logrus"
)

var ErrCollision = errors.New("period already archived")

// Dirs names the locations the archiver manages. Each one gets its own
// archive/<period> subdirectory.
type Dirs struct {
	RawDir     string
	CleanedDir string
	ReportsDir string
}

// Result reports what an archive run did.
type Result struct {
	Period   period.Period
	Archived []string
	Warnings []string
	NoOp     bool
}

type Archiver interface {
	Archive(ctx context.Context, p period.Period) (Result, error)
}

type ArchiverImpl struct {
	dirs Dirs
}

func NewArchiver(dirs Dirs) *ArchiverImpl {
	return &ArchiverImpl{dirs: dirs}
}

type move struct {
	source string
	target string
}

// Archive moves the period's raw exports and generated outputs into
// archive/<period> subdirectories. The whole run is planned up front: if
// any destination already holds files the run fails with ErrCollision and
// nothing moves. Archiving a period with nothing to move is a no-op, so
// repeating an archive is always safe.
func (a *ArchiverImpl) Archive(ctx context.Context, p period.Period) (Result, error) {
	label := p.String()
	result := Result{Period: p}

	var moves []move
	areas := []struct {
		dir     string
		pattern string
		what    string
	}{
		{a.dirs.RawDir, "*.csv", "raw exports"},
		{a.dirs.CleanedDir, "*" + label + "*", "cleaned outputs"},
		{a.dirs.ReportsDir, "*" + label + "*", "reports"},
	}
	for _, area := range areas {
		found, err := planArea(area.dir, area.pattern, label)
		if err != nil {
			return Result{}, err
		}
		if len(found) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("no %s found for %s in %s", area.what, label, area.dir))
			continue
		}
		moves = append(moves, found...)
	}

	if len(moves) == 0 {
		log.Infof("nothing to archive for %s", label)
		result.NoOp = true
		result.Warnings = nil
		return result, nil
	}

	if err := checkCollisions(moves, label); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var done []move
	for _, m := range moves {
		if err := os.MkdirAll(filepath.Dir(m.target), 0755); err != nil {
			rollback(done)
			return Result{}, fmt.Errorf("creating archive directory: %w", err)
		}
		if err := os.Rename(m.source, m.target); err != nil {
			rollback(done)
			return Result{}, fmt.Errorf("archiving %s: %w", m.source, err)
		}
		log.Debugf("archived %s -> %s", m.source, m.target)
		done = append(done, m)
		result.Archived = append(result.Archived, m.target)
	}
	sort.Strings(result.Archived)
	log.Infof("archived %d files for %s", len(result.Archived), label)
	return result, nil
}

func planArea(dir, pattern, label string) ([]move, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(matches)
	var moves []move
	for _, source := range matches {
		info, err := os.Stat(source)
		if err != nil || info.IsDir() {
			continue
		}
		target := filepath.Join(dir, "archive", label, filepath.Base(source))
		moves = append(moves, move{source: source, target: target})
	}
	return moves, nil
}

// checkCollisions refuses to touch anything when a destination directory
// already has content. A second archive of the same period must either be
// a no-op or an error, never a silent overwrite.
func checkCollisions(moves []move, label string) error {
	seen := map[string]bool{}
	for _, m := range moves {
		dir := filepath.Dir(m.target)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("checking archive directory %s: %w", dir, err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("%w: %s already contains %d files", ErrCollision, dir, len(entries))
		}
	}
	return nil
}

func rollback(done []move) {
	for i := len(done) - 1; i >= 0; i-- {
		if err := os.Rename(done[i].target, done[i].source); err != nil {
			log.Errorf("rollback failed for %s: %v", done[i].target, err)
		}
	}
}
