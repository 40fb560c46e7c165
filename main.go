package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrNotDirectory is returned when the root to scan is missing or is not a
// directory.
var ErrNotDirectory = errors.New("directory does not exist")

// Options holds the resolved settings of one run.
type Options struct {
	Root             string
	Output           string
	Encoding         string
	Exclude          string
	SkipHidden       bool
	RespectGitignore bool
	MaxDepth         int
	Print            bool
	Theme            string
	Tree             bool
	Clipboard        bool
	PDF              string
	Interactive      bool
	Quiet            bool
	Compact          bool

	// Diagnostics receives scan warnings. Defaults to stderr.
	Diagnostics io.Writer
}

var cfgFile string

// version is the application version, set via ldflags.
var version string = "dev"

var rootCmd = &cobra.Command{
	Use:   "medialist",
	Short: "medialist writes the structure of a media directory as JSON.",
	Long: `medialist walks a directory tree and writes a JSON document describing
every directory and file in it. Files carry their format (extension) and a
URL-encoded path rooted at media/, ready to be served by a static site.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(loadOptions(), os.Stdout)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/medialist/config.toml)")

	// Scan settings are persistent so that serve shares them.
	flags := rootCmd.PersistentFlags()

	// Input
	flags.StringP("root", "r", "./media", "Media root directory or Git repository URL")
	flags.Bool("interactive", false, "Pick the root directory with a fuzzy finder")

	// Filtering
	flags.StringP("exclude", "e", "", "Patterns to exclude (comma-separated, e.g. *.tmp,Thumbs.db)")
	flags.Bool("skip-hidden", false, "Skip hidden files and directories")
	flags.Bool("respect-gitignore", false, "Skip entries matched by the root .gitignore")
	flags.Int("max-depth", 0, "Maximum directory depth to descend (0 for no limit)")

	// Output
	flags.StringP("output", "o", "files.json", "Output file name")
	flags.String("encoding", encodingJSON, "Output encoding: json or yaml")
	flags.Bool("compact", false, "Write JSON on a single line without indentation")
	flags.BoolP("print", "p", false, "Also print the document to stdout")
	flags.String("theme", "dracula", "Syntax highlighting theme for --print")
	flags.Bool("tree", false, "Print a text tree to stdout")
	flags.BoolP("clipboard", "c", false, "Copy the document to the clipboard")
	flags.String("pdf", "", "Also render the tree and summary to a PDF file")
	flags.BoolP("quiet", "q", false, "Only report errors")

	for _, name := range []string{
		"root", "interactive", "exclude", "skip-hidden", "respect-gitignore", "max-depth",
		"output", "encoding", "compact", "print", "theme", "tree", "clipboard", "pdf", "quiet",
	} {
		_ = viper.BindPFlag(configKey(name), flags.Lookup(name))
	}
}

// configKey maps a flag name to its snake_case config key.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "medialist"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("MEDIALIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			warnf(os.Stderr, "Error reading config file: %v", err)
		}
	}
}

// loadOptions collects the effective settings: defaults < config < env < flags.
func loadOptions() Options {
	return Options{
		Root:             viper.GetString("root"),
		Output:           viper.GetString("output"),
		Encoding:         strings.ToLower(viper.GetString("encoding")),
		Exclude:          excludeSetting(),
		SkipHidden:       viper.GetBool("skip_hidden"),
		RespectGitignore: viper.GetBool("respect_gitignore"),
		MaxDepth:         viper.GetInt("max_depth"),
		Print:            viper.GetBool("print"),
		Theme:            viper.GetString("theme"),
		Tree:             viper.GetBool("tree"),
		Clipboard:        viper.GetBool("clipboard"),
		PDF:              viper.GetString("pdf"),
		Interactive:      viper.GetBool("interactive"),
		Quiet:            viper.GetBool("quiet"),
		Compact:          viper.GetBool("compact"),
		Diagnostics:      os.Stderr,
	}
}

// excludeSetting returns the exclude patterns as one comma-separated string.
// Flags and env give a plain string, which is kept as is so patterns with
// spaces survive. A config file may give a list instead.
func excludeSetting() string {
	switch v := viper.Get("exclude").(type) {
	case []string:
		return strings.Join(v, ",")
	case []any:
		patterns := make([]string, 0, len(v))
		for _, p := range v {
			patterns = append(patterns, fmt.Sprint(p))
		}
		return strings.Join(patterns, ",")
	default:
		return viper.GetString("exclude")
	}
}

// runScan resolves the root, builds the tree, writes it and performs the
// optional extras. The document is fully encoded before anything is written.
func runScan(opts Options, out io.Writer) error {
	root := opts.Root
	if root == "" {
		root = "./media"
	}
	excludes := parsePatterns(opts.Exclude)

	if opts.Interactive {
		picked, err := runInteractiveFinder(!opts.SkipHidden)
		if errors.Is(err, errSelectionAborted) {
			fmt.Fprintln(out, styleMuted.Render("Interactive selection aborted."))
			return nil
		}
		if err != nil {
			return err
		}
		root = picked
	}

	if isGitURL(root) {
		checkout, tempDir, err := cloneGitRepo(root, opts.Quiet)
		if err != nil {
			return err
		}
		defer os.RemoveAll(tempDir)
		root = checkout
		excludes = append(excludes, ".git")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotDirectory, root, err)
	}
	if !isDir(rootAbs) {
		return fmt.Errorf("%w: %s", ErrNotDirectory, rootAbs)
	}

	if !opts.Quiet {
		fmt.Fprintln(out, styleInfo.Render(fmt.Sprintf("Scanning directory: %s", rootAbs)))
	}

	var spinner *pterm.SpinnerPrinter
	if !opts.Quiet && out == os.Stdout {
		spinner, _ = pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Scanning...")
	}
	tree, data, err := scanDocument(rootAbs, excludes, opts)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return err
	}
	if !opts.Quiet {
		fmt.Fprintln(out, styleSuccess.Render(fmt.Sprintf("File structure saved to %s", opts.Output)))
	}

	if opts.Print {
		language := opts.Encoding
		if language == "" {
			language = encodingJSON
		}
		if err := highlight(out, string(data), language, opts.Theme); err != nil {
			warnf(opts.diagnostics(), "Syntax highlighting failed: %v", err)
			fmt.Fprintln(out, string(data))
		}
	}

	if opts.Tree {
		fmt.Fprint(out, printTree(tree))
	}

	if opts.Clipboard {
		if err := clipboard.WriteAll(string(data)); err != nil {
			warnf(opts.diagnostics(), "Error writing to clipboard: %v", err)
		} else if !opts.Quiet {
			fmt.Fprintln(out, styleMuted.Render("Document copied to clipboard."))
		}
	}

	if opts.PDF != "" || !opts.Quiet {
		kinds, err := loadKinds()
		if err != nil {
			warnf(opts.diagnostics(), "Could not load kinds, using defaults: %v", err)
			kinds = newKindMap(defaultKinds)
		}
		summary := Summarize(tree, kinds)

		if opts.PDF != "" {
			if err := generatePDF(tree, summary, opts.PDF); err != nil {
				return err
			}
			if !opts.Quiet {
				fmt.Fprintln(out, styleSuccess.Render(fmt.Sprintf("PDF saved to %s", opts.PDF)))
			}
		}
		if !opts.Quiet {
			fmt.Fprint(out, styleMuted.Render(printSummary(summary)))
			fmt.Fprintln(out)
		}
	}

	return nil
}

// scanDocument builds the tree under rootAbs, encodes it and writes it to
// opts.Output. rootAbs must be an existing directory.
func scanDocument(rootAbs string, excludes []string, opts Options) (*DirectoryNode, []byte, error) {
	builder := &Builder{
		Exclude:     excludes,
		SkipHidden:  opts.SkipHidden,
		MaxDepth:    opts.MaxDepth,
		Diagnostics: opts.Diagnostics,
	}
	if opts.RespectGitignore {
		matcher, err := loadGitignore(rootAbs)
		if err != nil {
			warnf(opts.diagnostics(), "%v", err)
		} else if matcher != nil {
			builder.Ignore = matcher
		}
	}

	tree := builder.Build(rootAbs, "")
	data, err := encodeTree(tree, opts.Encoding, opts.Compact)
	if err != nil {
		return nil, nil, err
	}
	if err := writeDocument(data, opts.Output); err != nil {
		return nil, nil, err
	}
	return tree, data, nil
}

func (o Options) diagnostics() io.Writer {
	if o.Diagnostics == nil {
		return os.Stderr
	}
	return o.Diagnostics
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
