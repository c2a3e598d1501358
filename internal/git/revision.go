package git

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// ErrNotRepository is returned when no repository encloses the path.
var ErrNotRepository = stdErrors.New("not a git repository")

// Info describes the checked out revision.
type Info struct {
	Commit string
	Branch string
	Dirty  bool
}

// Revision opens the repository enclosing root, searching parent directories,
// and reports HEAD. Dirty is computed from the worktree status.
func Revision(root string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stdErrors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, ErrNotRepository
		}
		return Info{}, errors.FileSystemError("cannot open repository").WithContext("path", root).WithCause(err).Build()
	}
	head, err := repo.Head()
	if err != nil {
		// Unborn branch or detached state unreadable by go-git; fall back to the raw file.
		if commit, rawErr := ReadRepoHead(root); rawErr == nil && commit != "" {
			return Info{Commit: commit}, nil
		}
		return Info{}, errors.FileSystemError("cannot resolve HEAD").WithContext("path", root).WithCause(err).Build()
	}
	info := Info{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	if wt, wtErr := repo.Worktree(); wtErr == nil {
		if status, stErr := wt.Status(); stErr == nil {
			info.Dirty = !status.IsClean()
		}
	}
	return info, nil
}

// ReadRepoHead returns the HEAD commit hash by reading .git/HEAD of the
// repository enclosing repoPath, resolving a symbolic reference when needed.
func ReadRepoHead(repoPath string) (string, error) {
	dir, err := findDotGit(repoPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, "HEAD"))
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(data))
	if strings.HasPrefix(line, "ref:") {
		ref := strings.TrimSpace(strings.TrimPrefix(line, "ref:"))
		refData, refErr := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
		if refErr != nil {
			return "", refErr
		}
		return strings.TrimSpace(string(refData)), nil
	}
	return line, nil
}

func findDotGit(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ".git")
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotRepository
		}
		dir = parent
	}
}
