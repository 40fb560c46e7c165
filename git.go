package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// isGitURL checks if the input string looks like a Git repository URL.
// Prioritizes .git suffix or git@ prefix.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") ||
		strings.HasPrefix(input, "git@")
}

// repoName derives the checkout directory name from a repository URL, so the
// scanned root is named after the repository rather than the temp dir.
func repoName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndex(trimmed, ":"); i >= 0 && !strings.Contains(trimmed[i:], "/") {
		trimmed = trimmed[i+1:]
	}
	name := path.Base(filepath.ToSlash(trimmed))
	if name == "." || name == "/" || name == "" || strings.Contains(name, ":") {
		return "repository"
	}
	return name
}

// cloneGitRepo clones a Git repository URL into a fresh temporary directory.
// It returns the checkout path and the temporary directory to remove later.
func cloneGitRepo(url string, quiet bool) (checkout, tempDir string, err error) {
	tempDir, err = os.MkdirTemp("", "medialist-git-")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	checkout = filepath.Join(tempDir, repoName(url))

	opts := &git.CloneOptions{
		URL:           url,
		Depth:         1,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
	}
	if !quiet {
		fmt.Printf("Cloning Git repository '%s' into '%s'...\n", url, checkout)
		opts.Progress = os.Stdout
	}

	if _, err = git.PlainClone(checkout, false, opts); err != nil {
		_ = os.RemoveAll(tempDir)
		return "", "", fmt.Errorf("failed to clone repository '%s': %w", url, err)
	}
	return checkout, tempDir, nil
}
