package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	wpposter "github.com/ediblesites/wp-poster"
	"github.com/ediblesites/wp-poster/internal/config"
	"github.com/ediblesites/wp-poster/internal/document"
	"github.com/ediblesites/wp-poster/internal/logging"
)

var (
	flagSiteURL     string
	flagUsername    string
	flagAppPassword string
	flagDraft       bool
	flagMarkdown    bool
	flagRaw         bool
	flagTest        bool
	flagVerbose     bool
)

func init() {
	rootCmd.Flags().StringVar(&flagSiteURL, "site-url", "", "WordPress site URL, overrides the config file")
	rootCmd.Flags().StringVar(&flagUsername, "username", "", "WordPress username, overrides the config file")
	rootCmd.Flags().StringVar(&flagAppPassword, "app-password", "", "Application password, overrides the config file")
	rootCmd.Flags().BoolVar(&flagDraft, "draft", false, "Force the post status to draft")
	rootCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Convert the body to Gutenberg block markup")
	rootCmd.Flags().BoolVar(&flagRaw, "raw", false, "Send the body unconverted")
	rootCmd.Flags().BoolVar(&flagTest, "test", false, "Parse and convert without contacting the site")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.MarkFlagsMutuallyExclusive("markdown", "raw")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configPathCmd)
}

var rootCmd = &cobra.Command{
	Use:   "wp-post <file.md>",
	Short: "Publish a markdown file to WordPress",
	Long: `wp-post reads a markdown file with YAML frontmatter and creates or
updates the corresponding WordPress post over the REST API.

Examples:
  wp-post article.md                  # publish with settings from frontmatter
  wp-post article.md --draft          # force draft status
  wp-post article.md --markdown       # convert body to Gutenberg blocks
  wp-post article.md --test           # dry run, print the prepared payload`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPost(cmd, args[0])
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runPost(cmd *cobra.Command, file string) error {
	source, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	opts := wpposter.Options{
		Format:  flagFormat(),
		Draft:   flagDraft,
		Preview: flagTest,
		BaseDir: filepath.Dir(file),
	}
	poster := wpposter.New(cfg, wpposter.WithLogger(logger))

	if flagTest {
		prepared, err := poster.Prepare(cmd.Context(), source, opts)
		if err != nil {
			return err
		}
		return printPreview(prepared)
	}

	result, err := poster.Post(cmd.Context(), source, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Posted: %s (id %d)\n", result.Link, result.ID)
	return nil
}

// flagFormat maps the format flags to the format override, empty meaning
// defer to frontmatter and config.
func flagFormat() string {
	switch {
	case flagMarkdown:
		return string(document.FormatGutenberg)
	case flagRaw:
		return string(document.FormatRaw)
	}
	return ""
}

// loadConfig resolves the active config and applies flag overrides. A dry
// run works without any configuration.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		if flagTest && errors.Is(err, config.ErrNotConfigured) {
			cfg = &config.Config{Format: "raw", LogLevel: "info", LogFormat: "console"}
		} else {
			return nil, err
		}
	}
	if flagSiteURL != "" {
		cfg.SiteURL = flagSiteURL
	}
	if flagUsername != "" {
		cfg.Username = flagUsername
	}
	if flagAppPassword != "" {
		cfg.AppPassword = flagAppPassword
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) (logging.Logger, error) {
	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	provider, err := logging.NewProvider(logging.Config{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}
	return logging.ModuleLogger(provider, "wp-post"), nil
}

// printPreview dumps the frontmatter and prepared body without touching the
// network.
func printPreview(prepared *wpposter.Prepared) error {
	meta, err := yaml.Marshal(prepared.Document.Frontmatter)
	if err != nil {
		return err
	}
	fmt.Println("--- frontmatter ---")
	fmt.Print(string(meta))
	fmt.Printf("--- body (%s) ---\n", prepared.Format)
	fmt.Println(prepared.Content)
	return nil
}
