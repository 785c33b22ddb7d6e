package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtzll/vidstudy/internal"
)

var (
	config        *internal.Config
	configFile    string
	traceShutdown func(context.Context) error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vidstudy [transcript file or -]",
	Short: "Turn video transcripts into study material",
	Long: `vidstudy turns the transcript of a video into study material using a
locally hosted language model.

From one transcript it produces a summary, a study guide, recommended
topics for further study and quiz questions. When the model backend is
unavailable every section falls back to a deterministic outline, so a
report is always produced.`,
	Example: `  # Analyze a transcript file (default behavior)
  vidstudy lecture.txt

  # Read the transcript from stdin
  cat lecture.txt | vidstudy -

  # Use a different model or backend
  vidstudy lecture.txt --model mistral:7b
  vidstudy lecture.txt --backend openai --model gpt-4o-mini`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config = internal.InitConfig(configFile)

		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}

		if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
			return fmt.Errorf("creating XDG directories: %w", err)
		}
		if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
		}
		if err := internal.EnsureDefaultPrompts(config.PromptsDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompts: %v\n", err)
		}

		level := config.LogLevel
		if config.Verbose {
			level = "debug"
		}
		internal.SetupLogging(internal.LogConfig{Level: level, Pretty: config.LogPretty, Output: os.Stderr})

		return setupTracing(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownTracing()
	},
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		if arg == "" && internal.IsStdinTerminal() {
			return cmd.Help()
		}

		parsed := internal.ParseArg(arg)
		if !parsed.IsValid() {
			if parsed.Kind == internal.InputCommand {
				return fmt.Errorf("'%s' is not a transcript file: %s", arg, parsed.SuggestCorrection(commandNames()))
			}
			return parsed.Error
		}

		return runAnalyze(cmd, parsed.Path)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Shutting down...")
		cancel()

		// give in-flight backend calls a moment to observe the cancellation
		time.Sleep(3 * time.Second)
		if err := shutdownTracing(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing traces: %v\n", err)
		}
		os.Exit(130)
	}()

	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// newApp applies model flags and builds the application
func newApp(cmd *cobra.Command) (*internal.App, error) {
	if err := internal.HandleModelFlags(cmd, config); err != nil {
		return nil, err
	}
	return internal.NewApp(config)
}

// setupTracing starts the OTLP exporter when an endpoint is configured
func setupTracing(ctx context.Context) error {
	if config.OTLPEndpoint == "" {
		return nil
	}
	shutdown, err := internal.SetupTracing(ctx, config.OTLPEndpoint, config.TraceSampleRate)
	if err != nil {
		return err
	}
	traceShutdown = shutdown
	return nil
}

func shutdownTracing() error {
	if traceShutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := traceShutdown(ctx)
	traceShutdown = nil
	return err
}

// commandNames lists the registered subcommands for typo suggestions
func commandNames() []string {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	return names
}

func init() {
	internal.AddModelFlags(rootCmd)
	internal.AddOutputFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress status output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/vidstudy/config.toml)")
}
