package organizer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"mediaorg/internal/logging"
	"mediaorg/internal/services"
)

// walkDir visits regular files under dir in name order. Listing failures are
// appended to errs and the subtree is skipped. The target root (when nested
// in the source) and excluded directories are not descended. Symlinks and
// other non-regular entries are ignored.
func (p *Planner) walkDir(ctx context.Context, dir string, errs *[]error, visit func(string, os.FileInfo)) error {
	infos, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "source directory not readable; skipping subtree", "directory_access",
			logging.String("dir", dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the source tree"),
			logging.String(logging.FieldImpact, "files below this directory are not organized"),
		)
		*errs = append(*errs, services.Wrap(services.ErrDirectoryAccess, "plan", "read directory", dir, err))
		return nil
	}

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := info.Name()
		if p.walk.SkipHidden && isHidden(name) {
			continue
		}
		path := filepath.Join(dir, name)
		switch {
		case info.IsDir():
			if p.skipDir(path) {
				p.logger.Debug("not descending", logging.String("dir", path))
				continue
			}
			if err := p.walkDir(ctx, path, errs, visit); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			visit(path, info)
		default:
			p.logger.Debug("ignoring non-regular entry", logging.String("path", path), logging.String("mode", info.Mode().String()))
		}
	}
	return nil
}

func (p *Planner) skipDir(path string) bool {
	clean := filepath.Clean(path)
	if clean == filepath.Clean(p.layout.TargetRoot) {
		return true
	}
	for _, excluded := range p.walk.Exclude {
		if clean == filepath.Clean(excluded) {
			return true
		}
	}
	return false
}
