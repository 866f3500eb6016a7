package provider

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/twigprompt/twig/internal/config"
)

// liveCallTimeout bounds every external process a provider shells out to,
// so a stuck git/network call can never wedge the prompt.
const liveCallTimeout = 250 * time.Millisecond

// CommandRunner executes external commands, letting tests substitute a
// fake without touching the real shell.
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("run %s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// GitProvider owns the git section. It issues one batched
// `git status --porcelain=v2 --branch` call rather than one command per
// fact, the way the branch/ahead-behind/staged/unstaged counts are all
// derivable from that single stream.
type GitProvider struct {
	runner CommandRunner
}

// NewGitProvider returns a GitProvider that shells out to the real git.
func NewGitProvider() *GitProvider {
	return &GitProvider{runner: execRunner{}}
}

// NewGitProviderWithRunner is used by tests to inject a fake CommandRunner.
func NewGitProviderWithRunner(r CommandRunner) *GitProvider {
	return &GitProvider{runner: r}
}

func (p *GitProvider) Name() string { return "git" }

func (p *GitProvider) Sections() []string { return []string{"git"} }

func (p *GitProvider) DefaultConfig() map[string]any {
	return map[string]any{"git": map[string]any{}}
}

func (p *GitProvider) Cacheable() bool         { return false }
func (p *GitProvider) CacheTTL() time.Duration { return 0 }

type gitStatus struct {
	branch   string
	ahead    int
	behind   int
	staged   int
	unstaged int
}

func (p *GitProvider) Collect(ctx context.Context, _ *config.Config, validate bool) (Vars, error) {
	vars := make(Vars)

	ctx, cancel := context.WithTimeout(ctx, liveCallTimeout)
	defer cancel()

	if _, err := p.runner.Output(ctx, "git", "--version"); err != nil {
		if validate {
			return nil, fmt.Errorf("git not available: %w", err)
		}
		return vars, nil
	}

	out, err := p.runner.Output(ctx, "git", "status", "--porcelain=v2", "--branch")
	if err != nil {
		// Most commonly: not inside a git working tree. Not an error in
		// the interactive path — the prompt simply omits git_* vars.
		if validate {
			return nil, fmt.Errorf("git status: %w", err)
		}
		return vars, nil
	}

	st := parseGitStatusV2(out)

	vars["git_branch"] = st.branch

	switch {
	case st.ahead > 0 && st.behind > 0:
		vars["git_tracking"] = fmt.Sprintf("(ahead.%d.behind.%d)", st.ahead, st.behind)
	case st.behind > 0:
		vars["git_tracking"] = fmt.Sprintf("(behind.%d)", st.behind)
	case st.ahead > 0:
		vars["git_tracking"] = fmt.Sprintf("(ahead.%d)", st.ahead)
	}

	if st.staged == 0 && st.unstaged == 0 {
		vars["git_status_clean"] = ":✔"
	} else {
		if st.staged > 0 {
			vars["git_status_staged"] = fmt.Sprintf(":+%d", st.staged)
		}
		if st.unstaged > 0 {
			vars["git_status_unstaged"] = fmt.Sprintf(":+%d", st.unstaged)
		}
	}

	if elapsed, err := p.getElapsed(ctx); err == nil {
		vars["git_elapsed"] = elapsed
	}

	return vars, nil
}

func (p *GitProvider) getElapsed(ctx context.Context) (string, error) {
	out, err := p.runner.Output(ctx, "git", "log", "-1", "--format=%ct")
	if err != nil {
		return "", err
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return "", err
	}
	elapsed := time.Since(time.Unix(ts, 0))
	if elapsed < 0 {
		elapsed = 0
	}
	return formatElapsed(elapsed), nil
}

// formatElapsed renders a duration as a single dominant unit: "42s",
// "5m", "3h", "2d". Deliberately not using a general-purpose humanizer,
// which produces multi-word prose ("3 hours ago") rather than the
// compact fixed-width token a prompt segment needs.
func formatElapsed(d time.Duration) string {
	secs := int64(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh", secs/3600)
	default:
		return fmt.Sprintf("%dd", secs/86400)
	}
}

func parseGitStatusV2(out []byte) gitStatus {
	st := gitStatus{branch: "HEAD"}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "# branch.head "):
			branch := strings.TrimPrefix(line, "# branch.head ")
			if branch == "(detached)" {
				// porcelain v2 always prints a branch.head line; on a
				// detached HEAD its value is the literal token
				// "(detached)", never empty, so gitStatus's zero value
				// never actually gets a chance to apply here.
				branch = "HEAD"
			}
			st.branch = branch
		case strings.HasPrefix(line, "# branch.ab "):
			ab := strings.TrimPrefix(line, "# branch.ab ")
			parts := strings.Fields(ab)
			if len(parts) == 2 {
				if a, err := strconv.Atoi(strings.TrimPrefix(parts[0], "+")); err == nil {
					st.ahead = a
				}
				if b, err := strconv.Atoi(strings.TrimPrefix(parts[1], "-")); err == nil {
					st.behind = b
				}
			}
		case strings.HasPrefix(line, "1 "), strings.HasPrefix(line, "2 "), strings.HasPrefix(line, "u "):
			// Entry lines carry the XY status pair right after the
			// leading type character and space: X is the index
			// (staged) state, Y is the worktree (unstaged) state.
			// '.' in either slot means "no change" for that side.
			if len(line) < 4 {
				continue
			}
			x, y := line[2], line[3]
			if x != '.' {
				st.staged++
			}
			if y != '.' {
				st.unstaged++
			}
		case strings.HasPrefix(line, "? "):
			st.unstaged++
		}
	}
	return st
}
