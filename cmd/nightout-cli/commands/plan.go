package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"nightout-backend/lib/browser"
	"nightout-backend/lib/configutil"
	"nightout-backend/lib/restyutil"
	"nightout-backend/lib/scrapers/dinner"
	"nightout-backend/lib/serviceutil"
	"nightout-backend/lib/telemetry"
	"nightout-backend/services/planner"

	"github.com/spf13/cobra"
)

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var verbose *bool

func init() {
	verbose = planCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging and request dumps.")
	rootCmd.AddCommand(planCmd)
}

func validateSeedUrl(raw string) error {
	if raw == "" {
		return fmt.Errorf("the url is empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("'%s' is not an absolute http(s) url", raw)
	}
	return nil
}

var planCmd = &cobra.Command{
	Use:   "plan <url>",
	Short: "Scrapes the three sites linked from the seed page and suggests a night out.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "missing seed url, please provide one as the first argument")
			os.Exit(1)
		}
		seed := args[0]
		if err := validateSeedUrl(seed); err != nil {
			fmt.Fprintln(os.Stderr, "url error: please try again with a valid url:", err)
			os.Exit(1)
		}

		telemetry.InitSlog(*verbose)

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read config", err)
		}
		// the booking site's demo account
		if cfg.Username == "" {
			cfg.Username = "zeke"
			cfg.Password = "coys"
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute*5)
		defer cancel()

		session, err := browser.New(ctx)
		if err != nil {
			serviceutil.Fatal("failed to initialize browsing session", err)
		}
		if *verbose {
			session.SetInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/nightout"))
		}

		suggestions, err := planner.Plan(ctx, session, seed, dinner.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			serviceutil.Fatal("planning failed", err)
		}

		planner.Report(os.Stdout, suggestions)
	},
}
