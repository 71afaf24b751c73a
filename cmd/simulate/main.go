package main

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"text/tabwriter"
	"time"

	tournamentservice "github.com/Black-And-White-Club/cutline/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/cutline/config"
	"github.com/Black-And-White-Club/cutline/pkg/jwt"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "simulate",
		Usage:  "play headless tournaments and mint API tokens",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			simulateCommand(out),
			tokenCommand(out),
		},
	}
}

type simulateOptions struct {
	Variant   string
	BuyIn     float64
	Seed      uint64
	UserScore *int
	Workbook  string
	Chart     string
}

func simulateCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "play one tournament to completion",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "variant", Value: "basketball"},
			&cli.Float64Flag{Name: "buy-in", Value: 10},
			&cli.Uint64Flag{Name: "seed", Usage: "random seed; 0 picks one"},
			&cli.IntFlag{Name: "user-score", Usage: "fixed score for the user every round"},
			&cli.StringFlag{Name: "xlsx", Usage: "write the standings workbook here"},
			&cli.StringFlag{Name: "png", Usage: "write the progression chart here"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			variant, ok := cfg.Variants[c.String("variant")]
			if !ok {
				return fmt.Errorf("%w: %q", tournamentservice.ErrUnknownVariant, c.String("variant"))
			}

			opts := simulateOptions{
				Variant:  variant.Name,
				BuyIn:    c.Float64("buy-in"),
				Seed:     c.Uint64("seed"),
				Workbook: c.String("xlsx"),
				Chart:    c.String("png"),
			}
			if c.IsSet("user-score") {
				score := c.Int("user-score")
				opts.UserScore = &score
			}
			if opts.Seed == 0 {
				opts.Seed = rand.Uint64()
			}

			_, err = simulate(variant, opts, out)
			return err
		},
	}
}

// simulate plays a tournament with the engine alone and prints each cut.
func simulate(variant tournamentdomain.Variant, opts simulateOptions, out io.Writer) (tournamentdomain.TournamentResult, error) {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	scores := tournamentdomain.NewRandomScores(variant.Scores, rng)

	t, err := tournamentdomain.Start(tournamentdomain.StartCommand{
		ID:      fmt.Sprintf("sim-%d", opts.Seed),
		Variant: variant,
		BuyIn:   opts.BuyIn,
	}, scores.Seed)
	if err != nil {
		return tournamentdomain.TournamentResult{}, err
	}

	fmt.Fprintf(out, "%s, %d entrants, buy-in %.2f, prize pool %.2f (seed %d)\n",
		variant.Name, variant.Entrants, opts.BuyIn, t.PrizePool, opts.Seed)

	var history []tournamentdomain.RoundResult
	for !t.Finished() {
		var round tournamentdomain.RoundResult
		t, round, err = tournamentdomain.PlayRound(t, opts.UserScore, scores)
		if err != nil {
			return tournamentdomain.TournamentResult{}, err
		}
		history = append(history, round)
		fmt.Fprintf(out, "round %d: target %d, %d survive, cutline %d, %d eliminated, tie=%t\n",
			round.Round, round.SurvivorTarget, round.Survivors, round.Cutline, len(round.Eliminated), round.TieDetected)
	}

	result := *t.Result
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tPLAYER\tTOTAL\tOUT")
	for _, s := range result.Standings {
		outAt := "-"
		if s.Player.EliminatedAtRound != nil {
			outAt = fmt.Sprintf("r%d", *s.Player.EliminatedAtRound)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", s.Position, s.Player.Name, s.Player.TotalScore, outAt)
	}
	if err := tw.Flush(); err != nil {
		return result, err
	}
	fmt.Fprintf(out, "%d winner(s), share %.2f, user payout %.2f\n", len(result.Winners), result.Share, result.UserPayout)

	if opts.Workbook != "" {
		data, err := tournamentservice.BuildStandingsWorkbook(t, history)
		if err != nil {
			return result, err
		}
		if err := os.WriteFile(opts.Workbook, data, 0o644); err != nil {
			return result, fmt.Errorf("failed to write workbook: %w", err)
		}
	}
	if opts.Chart != "" {
		data, err := tournamentservice.GenerateProgressChart(t, tournamentservice.DefaultPalette())
		if err != nil {
			return result, err
		}
		if err := os.WriteFile(opts.Chart, data, 0o644); err != nil {
			return result, fmt.Errorf("failed to write chart: %w", err)
		}
	}
	return result, nil
}

func tokenCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "mint a bearer token for an account",
		ArgsUsage: "<account-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "display name"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			account := c.Args().First()
			if account == "" {
				return cli.Exit("account id required", 2)
			}
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.JWT.Secret == "" {
				return cli.Exit("jwt secret not configured", 1)
			}
			token, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL, cfg.JWT.Issuer).
				GenerateToken(account, c.String("name"), jwt.RolePlayer, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, token)
			return nil
		},
	}
}
