// ABOUTME: Entry point for the tapspeak CLI
// ABOUTME: Profile setup, speaking, entitlement status and symbol search

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tapspeak/tapspeak/internal/caregiver"
	"github.com/tapspeak/tapspeak/internal/config"
	"github.com/tapspeak/tapspeak/internal/coreboard"
	"github.com/tapspeak/tapspeak/internal/entitlement"
	"github.com/tapspeak/tapspeak/internal/purchase"
	"github.com/tapspeak/tapspeak/internal/session"
	"github.com/tapspeak/tapspeak/internal/speech"
	"github.com/tapspeak/tapspeak/internal/store"
	"github.com/tapspeak/tapspeak/internal/symbols"
)

// Version is set by goreleaser at build time.
var version = "dev"

var configPath string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:           "tapspeak",
		Short:         "Offline-first AAC communication core",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(
		newInitCmd(),
		newStatusCmd(),
		newSpeakCmd(),
		newSymbolsCmd(),
		newPinCmd(),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// getConfigPath returns the path to the tapspeak config file.
// Priority: --config flag > TAPSPEAK_CONFIG env var > XDG_CONFIG_HOME/tapspeak/config.yaml
func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("TAPSPEAK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "tapspeak.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "tapspeak", "config.yaml")
}

// loadConfig loads the config file, falling back to defaults when none exists.
func loadConfig() (*config.Config, error) {
	path := getConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	return config.Load(path)
}

func defaultConfig() *config.Config {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return &config.Config{
		Database: config.DatabaseConfig{
			Path: filepath.Join(dataDir, "tapspeak", "tapspeak.db"),
		},
		Entitlement: config.EntitlementConfig{
			TrialDays:       entitlement.DefaultTrialDays,
			GracePeriodDays: entitlement.DefaultGracePeriodDays,
		},
	}
}

// storeManager owns the single store handle for the process; commands open
// it through the lifecycle manager and tear it down on exit.
var storeManager = store.NewManager()

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	if err := storeManager.Init(cfg.Database.Path); err != nil {
		return nil, err
	}
	return storeManager.Get()
}

func newEngine(cfg *config.Config) entitlement.Engine {
	engine := entitlement.NewEngine()
	if cfg.Entitlement.TrialDays > 0 {
		engine.TrialDays = cfg.Entitlement.TrialDays
	}
	if cfg.Entitlement.GracePeriodDays > 0 {
		engine.GracePeriodDays = cfg.Entitlement.GracePeriodDays
	}
	return engine
}

func newInitCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a profile with a starter core board and begin the trial",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			slog.SetDefault(setupLogger(cfg.Logging))

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer storeManager.Teardown()

			ctx := cmd.Context()
			profile := &store.Profile{ID: store.NewID(), Name: name}
			if err := s.CreateProfile(ctx, profile); err != nil {
				return fmt.Errorf("creating profile: %w", err)
			}

			bootstrapper := coreboard.NewBootstrapper(s)
			board, err := bootstrapper.Bootstrap(ctx, profile.ID)
			if err != nil {
				return fmt.Errorf("seeding core board: %w", err)
			}

			cache := entitlement.NewCache(s, newEngine(cfg))
			facts, err := cache.Get(ctx)
			if err != nil {
				return err
			}
			if facts == nil {
				if err := cache.SetEntitlement(ctx, newEngine(cfg).StartTrial(time.Now())); err != nil {
					return fmt.Errorf("starting trial: %w", err)
				}
			}

			fmt.Printf("Created profile %s (%s)\n", color.CyanString(profile.Name), profile.ID)
			fmt.Printf("Seeded %s with %dx%d grid\n", color.CyanString(board.Name), board.GridCols, board.GridRows)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "profile display name")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current entitlement snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			slog.SetDefault(setupLogger(cfg.Logging))

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer storeManager.Teardown()

			ctx := cmd.Context()
			cache := entitlement.NewCache(s, newEngine(cfg))

			if refresh {
				if err := refreshEntitlement(ctx, cfg, s, cache); err != nil {
					// Offline refresh failures fall back to the cached snapshot
					slog.Warn("online validation failed, using cached entitlement", "error", err)
				}
			}

			facts, err := cache.Get(ctx)
			if err != nil {
				return err
			}
			printStatus(facts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "validate the subscription online first")
	return cmd
}

func refreshEntitlement(ctx context.Context, cfg *config.Config, s *store.SQLiteStore, cache *entitlement.Cache) error {
	if cfg.Entitlement.ValidationURL == "" {
		return fmt.Errorf("entitlement.validation_url is not configured")
	}
	profiles, err := s.ListProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no profile exists, run init first")
	}

	client := purchase.NewClient(purchase.Config{
		BaseURL:       cfg.Entitlement.ValidationURL,
		APIKey:        cfg.Entitlement.APIKey,
		SigningSecret: cfg.Entitlement.SigningSecret,
	})
	facts, err := client.Validate(ctx, profiles[0].ID)
	if err != nil {
		return err
	}
	if facts == nil {
		// No remote entitlement is not a revocation; keep the cached snapshot
		return nil
	}
	return cache.SetEntitlement(ctx, facts)
}

func printStatus(facts *entitlement.Facts) {
	if facts == nil {
		fmt.Println("Subscription:", color.HiBlackString("not initialized"), "(full access)")
		return
	}

	var label string
	switch facts.Status {
	case entitlement.StatusTrialActive:
		label = color.CyanString(string(facts.Status))
	case entitlement.StatusActiveSubscribed:
		label = color.GreenString(string(facts.Status))
	case entitlement.StatusGracePeriod:
		label = color.YellowString(string(facts.Status))
	case entitlement.StatusExpiredLimitedMode:
		label = color.RedString(string(facts.Status))
	default:
		label = string(facts.Status)
	}
	fmt.Println("Subscription:", label)

	if facts.ProductID != nil {
		fmt.Println("Product:     ", *facts.ProductID)
	}
	if facts.ExpiresAt != nil {
		fmt.Println("Expires:     ", time.UnixMilli(*facts.ExpiresAt).Local().Format(time.RFC1123))
	}
	if facts.LastValidatedAt > 0 {
		fmt.Println("Validated:   ", time.UnixMilli(facts.LastValidatedAt).Local().Format(time.RFC1123))
	}
}

// printSynth renders speech as text output. Stand-in for a platform TTS engine.
type printSynth struct{}

func (printSynth) Speak(ctx context.Context, text string, params speech.Params, done func()) {
	fmt.Println(color.New(color.Bold).Sprint("🔊 " + text))
	done()
}

func (printSynth) Stop() {}

func newSpeakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speak [words...]",
		Short: "Build a sentence from core board buttons and speak it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			slog.SetDefault(setupLogger(cfg.Logging))

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer storeManager.Teardown()

			ctx := cmd.Context()
			profiles, err := s.ListProfiles(ctx)
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				return fmt.Errorf("no profile exists, run init first")
			}
			profile := profiles[0]

			view, err := session.NewSelection(s, profile.ID).LoadBoard(ctx)
			if err != nil {
				return err
			}
			byLabel := make(map[string]*store.Button, len(view.Buttons))
			for _, b := range view.Buttons {
				byLabel[strings.ToLower(b.Label)] = b
			}

			sentence := session.NewSentence()
			for _, word := range args {
				if b, ok := byLabel[strings.ToLower(word)]; ok {
					sentence.Tap(b)
				} else {
					sentence.Text(word)
				}
			}
			text := sentence.Speech()

			speaker := speech.NewSpeaker(printSynth{}, speech.Config{
				Base:    cfg.Speech.WatchdogBase,
				PerChar: cfg.Speech.WatchdogPerChar,
			})
			defer speaker.Close()
			if err := speaker.Speak(text, speech.Params{}); err != nil {
				return err
			}
			speaker.Flush()

			utterance := &store.Utterance{
				ID:        store.NewID(),
				ProfileID: profile.ID,
				Text:      text,
			}
			if err := s.CreateUtterance(ctx, utterance); err != nil {
				return fmt.Errorf("recording utterance: %w", err)
			}
			return nil
		},
	}
	return cmd
}

func newSymbolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols <keyword>",
		Short: "Search the symbol library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			slog.SetDefault(setupLogger(cfg.Logging))
			if cfg.Symbols.Endpoint == "" {
				return fmt.Errorf("symbols.endpoint is not configured")
			}

			client := symbols.NewClient(symbols.Config{
				BaseURL:  cfg.Symbols.Endpoint,
				PageSize: cfg.Symbols.PageSize,
			})
			results := client.Search(cmd.Context(), args[0])

			count := 0
			for results.Next() {
				sym := results.Symbol()
				fmt.Printf("%s  %s  %s\n",
					color.CyanString(sym.Name), color.HiBlackString(sym.Source), sym.ImageURL)
				count++
			}
			if err := results.Err(); err != nil {
				slog.Warn("search ended early", "error", err)
			}
			fmt.Printf("%d symbols\n", count)
			return nil
		},
	}
	return cmd
}

func newPinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage the caregiver PIN",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <pin>",
		Short: "Set or replace the caregiver PIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer storeManager.Teardown()

			if err := caregiver.NewGate(s).SetPIN(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Caregiver PIN set")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <pin>",
		Short: "Remove the caregiver PIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer storeManager.Teardown()

			gate := caregiver.NewGate(s)
			if err := gate.Verify(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := gate.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Caregiver PIN removed")
			return nil
		},
	})

	return cmd
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
