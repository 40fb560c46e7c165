package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanOptions(root, output string) Options {
	return Options{
		Root:        root,
		Output:      output,
		Encoding:    encodingJSON,
		Theme:       "dracula",
		Diagnostics: &bytes.Buffer{},
	}
}

func TestRunScan_WritesDocument(t *testing.T) {
	root := makeTree(t, "media", "notes.TXT", "Images/pic.png", "images_old/")
	output := filepath.Join(t.TempDir(), "files.json")

	var out bytes.Buffer
	require.NoError(t, runScan(scanOptions(root, output), &out))

	assert.Contains(t, out.String(), "Scanning directory: "+root)
	assert.Contains(t, out.String(), "File structure saved to "+output)
	assert.Contains(t, out.String(), "Files: 2")

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Children []struct {
			Name         string            `json:"name"`
			Type         string            `json:"type"`
			Format       string            `json:"format"`
			OriginalPath string            `json:"original_path"`
			Children     []json.RawMessage `json:"children"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "media", doc.Name)
	assert.Equal(t, "directory", doc.Type)
	require.Len(t, doc.Children, 3)
	assert.Equal(t, "Images", doc.Children[0].Name)
	assert.Len(t, doc.Children[0].Children, 1)
	assert.Equal(t, "images_old", doc.Children[1].Name)
	assert.NotNil(t, doc.Children[1].Children)
	assert.Empty(t, doc.Children[1].Children)
	assert.Equal(t, "notes.TXT", doc.Children[2].Name)
	assert.Equal(t, "file", doc.Children[2].Type)
	assert.Equal(t, "txt", doc.Children[2].Format)
	assert.Equal(t, "media/notes.TXT", doc.Children[2].OriginalPath)
}

func TestRunScan_RelativeRootUsesAbsoluteName(t *testing.T) {
	root := makeTree(t, "albums", "cover.jpg")
	output := filepath.Join(t.TempDir(), "files.json")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	opts := scanOptions(".", output)
	opts.Quiet = true
	require.NoError(t, runScan(opts, &bytes.Buffer{}))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "albums"`)
	assert.Contains(t, string(data), `"original_path": "media/albums/cover.jpg"`)
}

func TestRunScan_MissingRoot(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "files.json")

	var out bytes.Buffer
	err := runScan(scanOptions(filepath.Join(dir, "nope"), output), &out)
	assert.ErrorIs(t, err, ErrNotDirectory)
	assert.NotContains(t, out.String(), "Scanning directory")
	assert.NoFileExists(t, output)
}

func TestRunScan_RootIsAFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "media")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	output := filepath.Join(dir, "files.json")

	err := runScan(scanOptions(file, output), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNotDirectory)
	assert.NoFileExists(t, output)
}

func TestRunScan_WriteError(t *testing.T) {
	root := makeTree(t, "media", "a.txt")
	output := filepath.Join(t.TempDir(), "missing", "files.json")

	var out bytes.Buffer
	err := runScan(scanOptions(root, output), &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotDirectory)
	assert.NotContains(t, out.String(), "File structure saved")
}

func TestRunScan_BadEncodingWritesNothing(t *testing.T) {
	root := makeTree(t, "media", "a.txt")
	output := filepath.Join(t.TempDir(), "files.json")

	opts := scanOptions(root, output)
	opts.Encoding = "xml"
	assert.Error(t, runScan(opts, &bytes.Buffer{}))
	assert.NoFileExists(t, output)
}

func TestRunScan_Extras(t *testing.T) {
	root := makeTree(t, "media", "a/b.png", "c.mp3", "skip.tmp")
	dir := t.TempDir()

	opts := scanOptions(root, filepath.Join(dir, "files.yaml"))
	opts.Encoding = encodingYAML
	opts.Exclude = "*.tmp"
	opts.Print = true
	opts.Tree = true
	opts.PDF = filepath.Join(dir, "tree.pdf")

	var out bytes.Buffer
	require.NoError(t, runScan(opts, &out))

	assert.Contains(t, out.String(), "└── c.mp3")
	assert.Contains(t, out.String(), "PDF saved to "+opts.PDF)
	assert.NotContains(t, out.String(), "skip.tmp")
	assert.FileExists(t, opts.PDF)

	data, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "original_path: media/a/b.png")
}

func TestRunScan_Quiet(t *testing.T) {
	root := makeTree(t, "media", "a.txt")
	output := filepath.Join(t.TempDir(), "files.json")

	opts := scanOptions(root, output)
	opts.Quiet = true

	var out bytes.Buffer
	require.NoError(t, runScan(opts, &out))
	assert.Empty(t, out.String())
	assert.FileExists(t, output)
}

// executeRoot runs the CLI with args and restores every flag afterwards.
func executeRoot(t *testing.T, args ...string) error {
	t.Helper()
	flags := rootCmd.PersistentFlags()
	t.Cleanup(func() {
		flags.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		rootCmd.SetArgs(nil)
	})
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestRootCmd_ExcludeKeepsSpaces(t *testing.T) {
	root := makeTree(t, "media", "My Photos/a.jpg", "My/b.jpg", "Photos/c.jpg")
	output := filepath.Join(t.TempDir(), "files.json")

	require.NoError(t, executeRoot(t, "--root", root, "--output", output, "--exclude", "My Photos", "--quiet"))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	doc := string(data)
	assert.NotContains(t, doc, `"name": "My Photos"`)
	assert.Contains(t, doc, `"name": "My"`)
	assert.Contains(t, doc, `"name": "Photos"`)
}

func TestRootCmd_Compact(t *testing.T) {
	root := makeTree(t, "media", "a.txt")
	output := filepath.Join(t.TempDir(), "files.json")

	require.NoError(t, executeRoot(t, "-r", root, "-o", output, "--compact", "-q"))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"media","type":"directory","children":[`+
		`{"name":"a.txt","type":"file","format":"txt","original_path":"media/a.txt","path":"media/a.txt"}]}`+"\n", string(data))
}

func TestExcludeSetting(t *testing.T) {
	t.Cleanup(func() { viper.Set("exclude", nil) })

	viper.Set("exclude", "My Photos, *.tmp")
	assert.Equal(t, "My Photos, *.tmp", excludeSetting())
	assert.Equal(t, []string{"My Photos", "*.tmp"}, parsePatterns(excludeSetting()))

	viper.Set("exclude", []any{"My Photos", "*.tmp"})
	assert.Equal(t, "My Photos,*.tmp", excludeSetting())

	viper.Set("exclude", []string{"Thumbs.db"})
	assert.Equal(t, "Thumbs.db", excludeSetting())
}

func TestConfigKey(t *testing.T) {
	assert.Equal(t, "max_depth", configKey("max-depth"))
	assert.Equal(t, "root", configKey("root"))
}
