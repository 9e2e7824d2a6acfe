package manifest

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/componentry/errors"
)

// scanLimit bounds how many manifests decode at once during a scan.
const scanLimit = 8

// Scan walks dir recursively for *.json manifests and decodes them
// concurrently. A document that fails to decode or validate is
// warn-logged and skipped rather than failing the scan; only an I/O
// error walking the tree or context cancellation aborts it. The result
// is sorted by name then location, so the same directory always yields
// the same registrations in the same order.
func Scan(ctx context.Context, dir string) ([]Registration, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDiscover, errors.KindIO, err, "walking "+dir)
	}

	regs := make([]Registration, len(paths))
	valid := make([]bool, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanLimit)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reg, err := FromFile(path)
			if err != nil {
				Logger().Warn("skipping manifest",
					zap.String("path", path),
					zap.Error(err))
				return nil
			}
			regs[i] = reg
			valid[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Registration, 0, len(regs))
	for i, reg := range regs {
		if valid[i] {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Location < out[j].Location
	})

	Logger().Debug("manifest scan complete",
		zap.String("dir", dir),
		zap.Int("found", len(paths)),
		zap.Int("usable", len(out)))

	return out, nil
}
