package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	gitconfig "github.com/go-git/go-git/v5/plumbing/format/config"
)

// GlobalExcludesPath resolves the user's global git excludes file:
//
//  1. core.excludesFile from $XDG_CONFIG_HOME/git/config, then ~/.gitconfig
//     (the later file wins, as in git)
//  2. $XDG_CONFIG_HOME/git/ignore
//  3. ~/.config/git/ignore
//
// It returns "" when no candidate can be determined.
func GlobalExcludesPath() (string, error) {
	home, _ := os.UserHomeDir()
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" && home != "" {
		xdg = filepath.Join(home, ".config")
	}

	var configs []string
	if xdg != "" {
		configs = append(configs, filepath.Join(xdg, "git", "config"))
	}
	if home != "" {
		configs = append(configs, filepath.Join(home, ".gitconfig"))
	}

	var excludes string
	for _, path := range configs {
		v, err := excludesFileFrom(path)
		if err != nil {
			return "", err
		}
		if v != "" {
			excludes = v
		}
	}
	if excludes != "" {
		return expandTilde(excludes)
	}

	if xdg == "" {
		return "", nil
	}
	return filepath.Join(xdg, "git", "ignore"), nil
}

// excludesFileFrom reads core.excludesFile from one git config file.
func excludesFileFrom(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("ignore: opening git config %s: %w", path, err)
	}
	defer f.Close()

	cfg := gitconfig.New()
	if err := gitconfig.NewDecoder(f).Decode(cfg); err != nil {
		return "", fmt.Errorf("ignore: decoding git config %s: %w", path, err)
	}
	return strings.TrimSpace(cfg.Section("core").Option("excludesfile")), nil
}

// LoadGlobal compiles the global excludes file. A missing file yields a nil
// Set and no error. The Set is rooted at root; a Stack rebases it onto the
// nearest repository enclosing its walk root.
func LoadGlobal(root string) (*Set, error) {
	path, err := GlobalExcludesPath()
	if err != nil || path == "" {
		return nil, err
	}

	b := NewBuilder(root)
	err = b.AddFile(path)
	var pe *PatternError
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case !errors.As(err, &pe):
		return nil, fmt.Errorf("ignore: reading global excludes %s: %w", path, err)
	}
	return b.Build(), err
}

// expandTilde expands ~ and ~user prefixes.
func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	userPart, rest := path, ""
	if i := strings.IndexByte(path, '/'); i >= 0 {
		userPart, rest = path[:i], path[i:]
	}

	if userPart == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("ignore: expanding ~: %w", err)
		}
		return home + rest, nil
	}

	u, err := user.Lookup(userPart[1:])
	if err != nil {
		return "", fmt.Errorf("ignore: expanding %s: %w", userPart, err)
	}
	return u.HomeDir + rest, nil
}
