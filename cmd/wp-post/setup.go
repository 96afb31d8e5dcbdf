package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ediblesites/wp-poster/internal/config"
	"github.com/ediblesites/wp-poster/internal/wordpress"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a global config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "config-path",
	Short: "Show which config files are consulted and which one is active",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		active := ""
		if cfg, err := config.Load(cwd); err == nil {
			active = cfg.Source
		}
		for _, path := range config.SearchPaths(cwd) {
			marker := " "
			if path == active {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, path)
		}
		if active == "" {
			fmt.Println("(no active config file)")
		}
		return nil
	},
}

func runInit(cmd *cobra.Command) error {
	reader := bufio.NewReader(os.Stdin)

	siteURL, err := prompt(reader, "Site URL (https://example.com): ")
	if err != nil {
		return err
	}
	username, err := prompt(reader, "Username: ")
	if err != nil {
		return err
	}
	appPassword, err := prompt(reader, "Application password: ")
	if err != nil {
		return err
	}

	cfg := config.Config{
		SiteURL:     strings.TrimRight(siteURL, "/"),
		Username:    username,
		AppPassword: appPassword,
		Format:      "raw",
		LogLevel:    "info",
		LogFormat:   "console",
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Println("Checking connection...")
	client := wordpress.New(cfg.SiteURL, cfg.Username, cfg.AppPassword)
	name, err := client.Me(cmd.Context())
	if err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}
	fmt.Printf("Connected as %s\n", name)

	path, err := config.DefaultPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
