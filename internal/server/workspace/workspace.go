// Package workspace manages the per-worker filesystem areas that hold
// materialized request payloads. The tree is partitioned by worker index, so
// distinct workers never write to overlapping paths:
//
//	<root>/tmp/<requestID>-<suffix>/   staging area
//	<root>/<workerIndex>/<requestID>/  finalized workspace
//
// Files are staged first and renamed into place only after the dispatch
// transaction commits, so a crash never leaves a claimed request pointing at
// a half-written workspace.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/minauth/internal/common"
	"github.com/dmitrijs2005/minauth/internal/filex"
	"github.com/google/uuid"
)

type Workspace struct {
	root string
}

// New opens a workspace rooted at dir, creating the root and the staging
// area if needed.
func New(root string) (*Workspace, error) {
	if err := filex.EnsureDir(root); err != nil {
		return nil, err
	}
	if err := filex.EnsureDir(filepath.Join(root, "tmp")); err != nil {
		return nil, err
	}
	return &Workspace{root: root}, nil
}

// Staging is a scratch directory collecting the files of one request before
// they are committed to a worker partition.
type Staging struct {
	dir string
}

// Stage creates a fresh staging directory for the request. The random suffix
// keeps retried dispatch attempts from colliding with leftovers of aborted
// ones.
func (w *Workspace) Stage(requestID string) (*Staging, error) {
	dir := filepath.Join(w.root, "tmp", fmt.Sprintf("%s-%s", requestID, uuid.NewString()))
	if err := os.Mkdir(dir, 0o770); err != nil {
		return nil, fmt.Errorf("stage %s: %w", requestID, err)
	}
	return &Staging{dir: dir}, nil
}

// WriteFile adds a file to the staging directory. It fails if the name was
// already written.
func (s *Staging) WriteFile(name string, data []byte) error {
	return filex.WriteNewFile(filepath.Join(s.dir, name), data)
}

// Discard removes the staging directory and everything in it.
func (s *Staging) Discard() error {
	return os.RemoveAll(s.dir)
}

// FinalPath returns the finalized workspace directory for a request on a
// worker.
func (w *Workspace) FinalPath(workerIndex int, requestID string) string {
	return filepath.Join(w.root, strconv.Itoa(workerIndex), requestID)
}

// Exists reports whether the finalized workspace for the request is present.
func (w *Workspace) Exists(workerIndex int, requestID string) (bool, error) {
	_, err := os.Stat(w.FinalPath(workerIndex, requestID))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Commit renames the staging directory into the worker partition. The final
// path must not exist yet: a present directory means a duplicate dispatch
// and yields common.ErrConflict without touching the existing files.
func (w *Workspace) Commit(s *Staging, workerIndex int, requestID string) error {
	final := w.FinalPath(workerIndex, requestID)

	if err := filex.EnsureDir(filepath.Dir(final)); err != nil {
		return err
	}

	if _, err := os.Stat(final); err == nil {
		return fmt.Errorf("workspace %s already exists: %w", final, common.ErrConflict)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", final, err)
	}

	if err := os.Rename(s.dir, final); err != nil {
		return fmt.Errorf("finalize %s: %w", final, err)
	}

	return nil
}
