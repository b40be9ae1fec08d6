package vcs

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/versio-release/versio/internal/errs"
)

// Level is a VCS escalation tier: how far the gateway is allowed to reach
// outside the local working tree.
type Level int

const (
	// LevelNone does no VCS access at all (pure in-memory / scripted use).
	LevelNone Level = iota
	// LevelLocal only reads/writes the local repository; never touches the network.
	LevelLocal
	// LevelRemote may read from the network (e.g. resolve a remote URL) but does not fetch/push.
	LevelRemote
	// LevelSmart may fetch and fast-forward merge before reading, and may push.
	LevelSmart
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelLocal:
		return "local"
	case LevelRemote:
		return "remote"
	case LevelSmart:
		return "smart"
	default:
		return "unknown"
	}
}

// ParseLevel parses one of "none", "local", "remote", "smart".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return LevelNone, nil
	case "local":
		return LevelLocal, nil
	case "remote":
		return LevelRemote, nil
	case "smart":
		return LevelSmart, nil
	default:
		return LevelNone, fmt.Errorf("unrecognized vcs level %q", s)
	}
}

// LevelRange is a [Required, Preferred] pair, as accepted by --vcs-level
// either as a single level (Required == Preferred) or a "low..high" range.
type LevelRange struct {
	Required  Level
	Preferred Level
}

// ParseLevelRange parses "smart", or "local..smart".
func ParseLevelRange(s string) (LevelRange, error) {
	if lo, hi, ok := strings.Cut(s, ".."); ok {
		required, err := ParseLevel(lo)
		if err != nil {
			return LevelRange{}, err
		}
		preferred, err := ParseLevel(hi)
		if err != nil {
			return LevelRange{}, err
		}
		if required > preferred {
			return LevelRange{}, fmt.Errorf("vcs-level range %q has required > preferred", s)
		}
		return LevelRange{Required: required, Preferred: preferred}, nil
	}

	lvl, err := ParseLevel(s)
	if err != nil {
		return LevelRange{}, err
	}
	return LevelRange{Required: lvl, Preferred: lvl}, nil
}

// Escalate detects the environment at g.Root() (is it a repo? does it have
// a remote? are credentials available?) and returns the highest Level that
// satisfies rng.Required without exceeding rng.Preferred. It fails with
// errs.ErrVcsUnavailable if rng.Required cannot be met.
func (g *Gateway) Escalate(rng LevelRange) (Level, error) {
	best := LevelNone

	if g.root != "" {
		best = LevelLocal
	}
	if best >= rng.Preferred {
		return clamp(best, rng), checkRequired(best, rng)
	}

	if _, err := g.cli.RemoteGetUrl(RemoteGetUrlOptions{Remote: "origin"}); err == nil {
		best = LevelRemote
	}
	if best >= rng.Preferred {
		return clamp(best, rng), checkRequired(best, rng)
	}

	if hasCredentials() {
		best = LevelSmart
	}

	return clamp(best, rng), checkRequired(best, rng)
}

func clamp(best Level, rng LevelRange) Level {
	if best > rng.Preferred {
		return rng.Preferred
	}
	return best
}

func checkRequired(best Level, rng LevelRange) error {
	if best < rng.Required {
		return errs.Wrap(errs.ErrVcsUnavailable,
			fmt.Errorf("required vcs level %q not satisfied (best available: %q)", rng.Required, best))
	}
	return nil
}

// hasCredentials reports whether an SSH agent or default identity file
// looks usable.
func hasCredentials() bool {
	if _, err := exec.LookPath("ssh-agent"); err == nil {
		if sock := lookupEnv("SSH_AUTH_SOCK"); sock != "" {
			return true
		}
	}
	return identityFileExists()
}
