package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"ctcseg/internal/config"
	"ctcseg/internal/deps"
	"ctcseg/internal/matrix"
	"ctcseg/internal/vocab"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

// CheckOutputDirectory accepts an existing writable directory, or a missing
// one whose nearest existing ancestor is writable.
func CheckOutputDirectory(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func checkDirectory(name, path string, mode uint32, ok string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, ok)}
}

// CheckVocabulary verifies that the configured vocabulary is usable.
func CheckVocabulary(cfg *config.Config) Result {
	const name = "Vocabulary"
	v, err := vocab.New(cfg.Alignment.Vocabulary)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if v.Len() == 0 {
		return Result{Name: name, Detail: "vocabulary is empty"}
	}
	detail := fmt.Sprintf("%d symbols, blank %q, mode %s", v.Len(), v.Blank(), cfg.Alignment.Mode)
	if cfg.Alignment.Mode == config.ModeToken && !v.Contains(cfg.Alignment.WordBoundary) {
		return Result{Name: name, Detail: detail + fmt.Sprintf(" (word boundary %q missing)", cfg.Alignment.WordBoundary)}
	}
	if cfg.Alignment.Mode == config.ModeToken && cfg.Alignment.TokenizerModel != "" {
		if _, err := matrix.NewTokenizer(cfg.Alignment, v); err != nil {
			return Result{Name: name, Detail: err.Error()}
		}
		detail += ", tokenizer " + cfg.Alignment.TokenizerModel
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckBackend evaluates the external programs the configuration requires.
func CheckBackend(cfg *config.Config) []Result {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		if !status.Available {
			results = append(results, Result{Name: status.Name, Passed: status.Optional, Detail: status.Detail})
			continue
		}
		results = append(results, Result{Name: status.Name, Passed: true, Detail: status.Path})
	}
	return results
}
