package vcs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/versio-release/versio/internal/errs"
)

// CommitMessage is the fixed message used for the mutation stage's single
// commit.
const CommitMessage = "build(deploy): Versio update versions"

// Mutator is the mutating half of the repo gateway: it stages file writes,
// commits them, forwards the prev_tag marker, and pushes. It is built on
// go-git/v5 rather than shelling out.
type Mutator struct {
	repo *gogit.Repository
	auth transport.AuthMethod
}

// OpenMutator opens the go-git repository rooted at dir and resolves push
// credentials via SSH agent, falling back to a default identity file.
func OpenMutator(dir string) (*Mutator, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrVcsUnavailable, fmt.Errorf("unable to open repository at %q: %w", dir, err))
	}

	auth, _ := resolveAuth()
	return &Mutator{repo: repo, auth: auth}, nil
}

func resolveAuth() (transport.AuthMethod, error) {
	if auth, err := ssh.NewSSHAgentAuth("git"); err == nil {
		return auth, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		path := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile("git", path, ""); err == nil {
			return auth, nil
		}
	}
	return nil, fmt.Errorf("no usable ssh credentials found")
}

// StageWrite writes data to path (relative to the repo root) in the
// worktree and adds it to the index, without committing. The file is
// written at once: a failure in a later StageWrite or in Commit leaves the
// earlier writes in the working tree and index, uncommitted.
func (m *Mutator) StageWrite(path string, data []byte) error {
	wt, err := m.repo.Worktree()
	if err != nil {
		return errs.Wrap(errs.ErrIO, err)
	}

	f, err := wt.Filesystem.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrIO, fmt.Errorf("unable to open %q for writing: %w", path, err))
	}
	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr != nil {
		return errs.Wrap(errs.ErrIO, writeErr)
	}
	if closeErr != nil {
		return errs.Wrap(errs.ErrIO, closeErr)
	}

	if _, err := wt.Add(path); err != nil {
		return errs.Wrap(errs.ErrIO, fmt.Errorf("unable to stage %q: %w", path, err))
	}
	return nil
}

// Commit commits everything staged by prior StageWrite calls and returns
// the new commit's oid.
func (m *Mutator) Commit(authorName, authorEmail string) (string, error) {
	wt, err := m.repo.Worktree()
	if err != nil {
		return "", errs.Wrap(errs.ErrIO, err)
	}

	hash, err := wt.Commit(CommitMessage, &gogit.CommitOptions{
		Author: &object.Signature{Name: authorName, Email: authorEmail, When: time.Now()},
	})
	if err != nil {
		return "", errs.Wrap(errs.ErrIO, fmt.Errorf("unable to commit staged changes: %w", err))
	}
	return hash.String(), nil
}

// MoveTag force-moves the named tag (typically prev_tag) to point at oid,
// creating it if it doesn't already exist.
func (m *Mutator) MoveTag(name, oid string) error {
	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), plumbing.NewHash(oid))
	if err := m.repo.Storer.SetReference(ref); err != nil {
		return errs.Wrap(errs.ErrIO, fmt.Errorf("unable to move tag %q to %q: %w", name, oid, err))
	}
	return nil
}

// Push pushes the named branch and tag to remote.
func (m *Mutator) Push(remote, branch, tag string) error {
	refSpecs := []config.RefSpec{
		config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)),
		config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag)),
	}

	err := m.repo.Push(&gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   refSpecs,
		Auth:       m.auth,
		Progress:   os.Stderr,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return errs.Wrap(errs.ErrIO, fmt.Errorf("unable to push %q and tag %q to %q: %w", branch, tag, remote, err))
	}
	return nil
}

// FetchFastForward fetches all tags and the named branch, then fast-forwards
// the local branch to match, failing explicitly with errs.ErrNotFastForward
// if that isn't possible, and with errs.ErrNotClean if the working tree is
// dirty. It never attempts a non-fast-forward merge.
func (m *Mutator) FetchFastForward(remote, branch string) error {
	wt, err := m.repo.Worktree()
	if err != nil {
		return errs.Wrap(errs.ErrIO, err)
	}

	status, err := wt.Status()
	if err != nil {
		return errs.Wrap(errs.ErrIO, err)
	}
	if !status.IsClean() {
		return errs.Wrap(errs.ErrNotClean, fmt.Errorf("working tree is not clean"))
	}

	err = m.repo.Fetch(&gogit.FetchOptions{
		RemoteName: remote,
		Tags:       gogit.AllTags,
		Auth:       m.auth,
		Progress:   os.Stderr,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return errs.Wrap(errs.ErrIO, fmt.Errorf("unable to fetch %q: %w", remote, err))
	}

	localRef, err := m.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return errs.Wrap(errs.ErrIO, err)
	}
	remoteRef, err := m.repo.Reference(plumbing.NewRemoteReferenceName(remote, branch), true)
	if err != nil {
		return errs.Wrap(errs.ErrIO, err)
	}
	if localRef.Hash() == remoteRef.Hash() {
		return nil
	}

	ok, err := m.isAncestor(localRef.Hash(), remoteRef.Hash())
	if err != nil {
		return errs.Wrap(errs.ErrIO, err)
	}
	if !ok {
		return errs.Wrap(errs.ErrNotFastForward, fmt.Errorf("local %q has diverged from %s/%s", branch, remote, branch))
	}

	if err := m.repo.Storer.SetReference(plumbing.NewHashReference(localRef.Name(), remoteRef.Hash())); err != nil {
		return errs.Wrap(errs.ErrIO, err)
	}
	return wt.Reset(&gogit.ResetOptions{Commit: remoteRef.Hash(), Mode: gogit.HardReset})
}

func (m *Mutator) isAncestor(ancestor, descendant plumbing.Hash) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	ancestorCommit, err := m.repo.CommitObject(ancestor)
	if err != nil {
		return false, err
	}
	descendantCommit, err := m.repo.CommitObject(descendant)
	if err != nil {
		return false, err
	}
	return ancestorCommit.IsAncestor(descendantCommit)
}
