package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/briefing"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
)

var weatherCmd = &cobra.Command{
	Use:   "weather [city]",
	Short: "Print current weather and an outfit suggestion",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		city := rt.city()
		if len(args) == 1 {
			city = args[0]
		}
		w, err := rt.orch.LoadWeather(cmd.Context(), city)
		if err != nil {
			return fmt.Errorf("weather for %s: %w", city, err)
		}
		printWeather(cmd.OutOrStdout(), w)
		return nil
	},
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Print top headlines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		n, err := rt.orch.LoadNews(cmd.Context())
		if err != nil {
			return fmt.Errorf("news: %w", err)
		}
		printNews(cmd.OutOrStdout(), n)
		return nil
	},
}

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Print quotes for the configured instruments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		printQuotes(cmd.OutOrStdout(), rt.orch.LoadMarkets(cmd.Context()))
		return nil
	},
}

var flagTarget string

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [base]",
	Short: "Convert an amount between currencies",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		amount, base, err := parseConvertArgs(args, rt.cfg.Currency.Base)
		if err != nil {
			return err
		}
		target := flagTarget
		if target == "" {
			target = rt.cfg.TargetCurrency()
		}
		c, err := rt.orch.Convert(cmd.Context(), amount, base, target)
		if errors.Is(err, services.ErrUnavailable) {
			fmt.Fprintln(cmd.OutOrStdout(), "Rate Unavailable")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.2f %s = %.2f %s (rate %.4f)\n", c.Amount, c.Base, c.Converted, c.Target, c.Rate)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&flagTarget, "to", "", "target currency (default from config)")
}

func parseConvertArgs(args []string, defaultBase string) (float64, string, error) {
	amount, err := strconv.ParseFloat(strings.ReplaceAll(args[0], ",", ""), 64)
	if err != nil || amount < 0 {
		return 0, "", fmt.Errorf("invalid amount %q", args[0])
	}
	base := defaultBase
	if len(args) > 1 {
		base = args[1]
	}
	if base == "" {
		base = "USD"
	}
	return amount, strings.ToUpper(base), nil
}

func printWeather(w io.Writer, s *services.WeatherSnapshot) {
	fmt.Fprintf(w, "%s: %s\n", s.City, s.Summary())
	fmt.Fprintf(w, "Humidity %d%%, wind %.1f m/s\n", s.HumidityPct, s.WindSpeed)
	for _, p := range s.Forecast {
		fmt.Fprintf(w, "  %s  %5.1f°C\n", p.Time.Format("Mon 15:04"), p.TemperatureC)
	}
	fmt.Fprintln(w, briefing.Outfit(s))
}

func printNews(w io.Writer, n *services.NewsSnapshot) {
	for i, a := range n.Articles {
		fmt.Fprintf(w, "%d. %s (%s)\n", i+1, a.Title, a.Source)
		if a.URL != "" {
			fmt.Fprintf(w, "   %s\n", a.URL)
		}
	}
}

func printQuotes(w io.Writer, quotes services.MarketSnapshot) {
	for _, q := range quotes {
		if !q.Available() {
			fmt.Fprintf(w, "%-10s %12s\n", q.Label, "N/A")
			continue
		}
		fmt.Fprintf(w, "%-10s %12.2f %+7.2f%%\n", q.Label, *q.Price, *q.ChangePct)
	}
}
