// Package main provides the venturelab CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/michael-borck/venture-lab-sub000/cli"
	"github.com/michael-borck/venture-lab-sub000/config"
)

var (
	// Global flags
	dataDir string
	verbose bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "venturelab",
		Short: "AI toolkit for entrepreneurship education",
		Long: `venturelab dispatches prompts to local or cloud AI providers
(ollama, openai, anthropic, gemini), keeps API keys in the OS keychain,
manages per-tool prompt templates, and accounts for token usage locally.`,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: platform config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(testCmd())
	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(promptsCmd())
	rootCmd.AddCommand(usageCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() (*cli.App, error) {
	return cli.NewApp(cli.Options{DataDir: dataDir, Verbose: verbose})
}

func generateCmd() *cobra.Command {
	var provider string
	var system string
	var temperature float32
	var maxTokens int
	var tool string

	defaults, err := config.EnvGenerationDefaults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		defaults = config.GenerationDefaults{Temperature: 0.7, MaxTokens: 1000}
	}

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Send a prompt to the configured AI provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Generate(context.Background(), args[0], cli.GenerateOptions{
				Provider:      provider,
				SystemMessage: system,
				Temperature:   temperature,
				MaxTokens:     maxTokens,
				Tool:          tool,
			})
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider (ollama, openai, anthropic, gemini); default: preferred")
	cmd.Flags().StringVar(&system, "system", "", "System message")
	cmd.Flags().Float32Var(&temperature, "temperature", defaults.Temperature, "Sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", defaults.MaxTokens, "Maximum completion tokens")
	cmd.Flags().StringVar(&tool, "tool", "", "Tool name for usage attribution")

	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List the models a provider reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Models(context.Background(), args[0])
		},
	}
}

func testCmd() *cobra.Command {
	var baseURL string
	var model string

	cmd := &cobra.Command{
		Use:   "test [provider]",
		Short: "Test connectivity to a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			// With --url or --model the unsaved configuration is tested
			// instead of the stored one.
			if cmd.Flags().Changed("url") || cmd.Flags().Changed("model") {
				return app.TestCustomConnection(context.Background(), args[0], baseURL, model)
			}
			return app.TestConnection(context.Background(), args[0])
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "Base URL to test instead of the stored one")
	cmd.Flags().StringVar(&model, "model", "", "Model to test instead of the stored one")

	return cmd
}

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys in the OS keychain",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [provider] [api-key]",
		Short: "Validate and store an API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.SetKey(args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get [provider]",
		Short: "Print the stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.GetKey(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [provider]",
		Short: "Delete a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.DeleteKey(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which providers have keys configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.KeyStatus()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "test-keychain",
		Short: "Verify OS keychain access",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.TestKeychain()
		},
	})

	return cmd
}

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and edit provider settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ShowSettings()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use [provider]",
		Short: "Set the preferred provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.SetPreferredProvider(args[0])
		},
	})

	cmd.AddCommand(configureCmd())
	return cmd
}

func configureCmd() *cobra.Command {
	var baseURL string
	var model string
	var enable bool
	var disable bool

	cmd := &cobra.Command{
		Use:   "set [provider]",
		Short: "Update a provider's configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enable && disable {
				return fmt.Errorf("--enable and --disable are mutually exclusive")
			}

			var update cli.ProviderUpdate
			if cmd.Flags().Changed("url") {
				update.BaseURL = &baseURL
			}
			if cmd.Flags().Changed("model") {
				update.Model = &model
			}
			if enable {
				t := true
				update.Enabled = &t
			}
			if disable {
				f := false
				update.Enabled = &f
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ConfigureProvider(args[0], update)
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "Base URL")
	cmd.Flags().StringVar(&model, "model", "", "Model name")
	cmd.Flags().BoolVar(&enable, "enable", false, "Enable the provider")
	cmd.Flags().BoolVar(&disable, "disable", false, "Disable the provider")

	return cmd
}

func promptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage per-tool prompt templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List prompts for all tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ListPrompts()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [tool]",
		Short: "Show a tool's prompt template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ShowPrompt(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "edit [tool] [template-file]",
		Short: "Replace a tool's template from a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.EditPrompt(args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset [tool]",
		Short: "Restore a tool's built-in prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ResetPrompt(args[0])
		},
	})

	cmd.AddCommand(renderCmd())

	var exportPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export all prompts as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ExportPrompts(exportPath)
		},
	}
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "", "Output file (default: stdout)")
	cmd.AddCommand(exportCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "import [file]",
		Short: "Import a prompt collection from JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ImportPrompts(args[0])
		},
	})

	return cmd
}

func renderCmd() *cobra.Command {
	var vars []string

	cmd := &cobra.Command{
		Use:   "render [tool]",
		Short: "Substitute variables into a tool's template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string, len(vars))
			for _, v := range vars {
				name, value, ok := strings.Cut(v, "=")
				if !ok {
					return fmt.Errorf("invalid variable %q, expected name=value", v)
				}
				values[name] = value
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.RenderPrompt(args[0], values)
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, "Template variable as name=value (repeatable)")
	return cmd
}

func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Inspect local usage accounting",
	}

	var days int
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregated usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ShowStats(context.Background(), days)
		},
	}
	statsCmd.Flags().IntVar(&days, "days", 30, "Window in days (0 for all history)")
	cmd.AddCommand(statsCmd)

	var limit, offset int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent requests, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ShowHistory(context.Background(), limit, offset)
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 50, "Maximum records to show")
	historyCmd.Flags().IntVar(&offset, "offset", 0, "Records to skip")
	cmd.AddCommand(historyCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all usage records",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ClearUsage(context.Background())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Export all usage records to Downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ExportUsage(context.Background())
		},
	})

	return cmd
}
