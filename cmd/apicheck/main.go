// Command apicheck exercises a running server through the browser
// transports: JSONP reads and, with -w, a form-relay write. Useful as a
// post-deploy smoke check.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"btb-portal/internal/bridge"
	"btb-portal/internal/config"
	"btb-portal/internal/logging"
	"btb-portal/internal/models"
)

type options struct {
	URL   string `short:"u" long:"url" default:"http://localhost:8080" description:"Server base URL"`
	Email string `short:"e" long:"email" description:"Search registrations by this email instead of listing all"`
	Write string `short:"w" long:"write-email" description:"Also add a registration with this email over the write transport"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := slog.Default()

	c := bridge.New(opts.URL, bridge.WithWriteTimeout(cfg.BridgeWriteTimeout))

	if opts.Email != "" {
		found, err := c.SearchByEmail(opts.Email)
		if err != nil {
			log.Error("searchByEmail", "err", err)
			os.Exit(1)
		}
		for _, p := range found {
			fmt.Printf("%d\t%s\t%s\n", p.RowIndex, p.Name, p.Email)
		}
		return
	}

	all, err := c.GetData()
	if err != nil {
		log.Error("getData", "err", err)
		os.Exit(1)
	}
	taken, err := c.GetTakenJerseyNumbers()
	if err != nil {
		log.Error("getTakenJerseyNumbers", "err", err)
		os.Exit(1)
	}
	fmt.Printf("%d registrations, %d jersey numbers taken\n", len(all), len(taken))

	if opts.Write != "" {
		env, err := c.AddPlayer(models.PlayerInput{Email: opts.Write, Name: "Apicheck"})
		if err != nil {
			log.Error("addPlayer", "err", err)
			os.Exit(1)
		}
		fmt.Printf("addPlayer: success=%v rowIndex=%d %s\n", env.Success, env.RowIndex, env.Message)
	}
}
