package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"upick/internal/config"
	"upick/internal/location"
	"upick/internal/logger"
	"upick/internal/models"
	"upick/internal/picker"
	"upick/internal/places"
	"upick/internal/tui"
	"upick/internal/view"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFile    string
	latitude   float64
	longitude  float64
	term       string
	price      string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "upick",
	Short: "Pick a random open restaurant near you",
	Long: `upick asks the places search service for open restaurants around you
and picks one of them at random.

Your position comes from --lat/--lon, or DEFAULT_LATITUDE/DEFAULT_LONGITUDE
in the config. Without a position the pick action stays disabled.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if !cmd.Flags().Changed("lat") {
			latitude = cfg.DefaultLatitude
		}
		if !cmd.Flags().Changed("lon") {
			longitude = cfg.DefaultLongitude
		}
		return nil
	},
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick one restaurant and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Setup(cfg.LogLevel, true, os.Stderr)

		filters, err := parseFilters()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		session := picker.NewSession("", location.Resolve(ctx, location.NewStatic(latitude, longitude)), time.Now())
		if err := picker.Run(ctx, session, filters, newPlacesClient(), picker.Uniform, time.Now); err != nil {
			return errors.New(view.Render(session).Message)
		}

		return printView(cmd.OutOrStdout(), view.Render(session))
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive pick screen",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := io.Discard
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			out = f
		}
		logger.Setup(cfg.LogLevel, false, out)

		filters, err := parseFilters()
		if err != nil {
			return err
		}

		model := tui.New(cmd.Context(), tui.Config{
			Locator: location.NewStatic(latitude, longitude),
			Search:  newPlacesClient(),
			Filters: filters,
		})
		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func parseFilters() (models.SearchFilters, error) {
	p, err := models.ParsePriceTier(price)
	if err != nil {
		return models.SearchFilters{}, err
	}
	return models.SearchFilters{Term: term, Price: p}, nil
}

func newPlacesClient() *places.Client {
	if cfg.PlacesAPIKey == "" {
		log.Warn().Msg("PLACES_API_KEY is not set")
	}
	return places.NewClient(places.Options{
		Endpoint: cfg.PlacesEndpoint,
		APIKey:   cfg.PlacesAPIKey,
		Radius:   cfg.PlacesRadius,
		Limit:    cfg.PlacesLimit,
		Timeout:  cfg.PlacesTimeout,
	})
}

func printView(w io.Writer, v view.View) error {
	switch v.Kind {
	case view.KindBusiness:
		_, err := fmt.Fprintln(w, tui.RenderCard(*v.Business))
		return err
	case view.KindError, view.KindBlocked:
		return errors.New(v.Message)
	default:
		_, err := fmt.Fprintln(w, v.Message)
		return err
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs", "directory containing app.env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Float64Var(&latitude, "lat", 0, "latitude of your position")
	rootCmd.PersistentFlags().Float64Var(&longitude, "lon", 0, "longitude of your position")
	rootCmd.PersistentFlags().StringVarP(&term, "term", "t", "", "search term, e.g. tacos")
	rootCmd.PersistentFlags().StringVarP(&price, "price", "p", "", "price tier: $, $$, $$$ or any")

	tuiCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the screen is open")

	rootCmd.AddCommand(pickCmd, tuiCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
