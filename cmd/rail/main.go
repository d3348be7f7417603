package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "ironrails/internal/cli"
	"ironrails/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "rail",
		Short:        "Ironrails CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newNewCmd(&apiBase),
		newGamesCmd(&apiBase),
		newUseCmd(),
		newStateCmd(&apiBase),
		newJournalCmd(&apiBase),
		newDeleteCmd(&apiBase),
		newBuyCmd(&apiBase),
		newBidCmd(&apiBase),
		newPassCmd(&apiBase),
		newSellCmd(&apiBase),
		newSellPrivateCmd(&apiBase),
		newAcceptCmd(&apiBase),
		newRejectCmd(&apiBase),
		newLayCmd(&apiBase),
		newTokenCmd(&apiBase),
		newRunCmd(&apiBase),
		newTrainCmd(&apiBase),
		newDividendCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requestCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newNewCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "new <player>...",
		Short: "Create a game with the named players",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestCtx(cmd)
			defer cancel()
			out, err := newClient(apiBase).CreateGame(ctx, args)
			if err != nil {
				return err
			}
			gameID, _ := out["id"].(string)
			if err := cl.SaveSession(cl.Session{GameID: gameID}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Game %s created.", gameID))
			printState(out)
			printInfo("Pick your seat with `rail use " + gameID + " <actor-id>`.")
			return nil
		},
	}
}

func newGamesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List games on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestCtx(cmd)
			defer cancel()
			out, err := newClient(apiBase).ListGames(ctx)
			if err != nil {
				return err
			}
			ids, _ := out["games"].([]any)
			if len(ids) == 0 {
				printInfo("No games yet.")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <game-id> [actor-id]",
		Short: "Select the game and seat to play",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := cl.Session{GameID: args[0]}
			if len(args) == 2 {
				s.ActorID = args[1]
			}
			if err := cl.SaveSession(s); err != nil {
				return err
			}
			printSuccess("Session saved.")
			return nil
		},
	}
}

func newStateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the selected game",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := cl.LoadSession()
			if err != nil {
				return err
			}
			ctx, cancel := requestCtx(cmd)
			defer cancel()
			out, err := newClient(apiBase).GameState(ctx, session.GameID)
			if err != nil {
				return err
			}
			printState(out)
			return nil
		},
	}
}

func newJournalCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "journal",
		Short: "Show the selected game's move journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := cl.LoadSession()
			if err != nil {
				return err
			}
			ctx, cancel := requestCtx(cmd)
			defer cancel()
			out, err := newClient(apiBase).Journal(ctx, session.GameID)
			if err != nil {
				return err
			}
			printJournal(out)
			return nil
		},
	}
}

func newDeleteCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <game-id>",
		Short: "Delete a game from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestCtx(cmd)
			defer cancel()
			if err := newClient(apiBase).DeleteGame(ctx, args[0]); err != nil {
				return err
			}
			if session, err := cl.LoadSession(); err == nil && session.GameID == args[0] {
				if err := cl.ClearSession(); err != nil {
					return err
				}
			}
			printSuccess("Game deleted.")
			return nil
		},
	}
}

// submitMove fills in the session's actor and posts the move, rendering
// rule violations in red instead of failing the command.
func submitMove(cmd *cobra.Command, apiBase *string, move map[string]any) error {
	session, err := cl.LoadSession()
	if err != nil {
		return err
	}
	if session.ActorID == "" {
		return fmt.Errorf("no seat selected, run `rail use %s <actor-id>`", session.GameID)
	}
	if _, ok := move["actor"]; !ok {
		move["actor"] = session.ActorID
	}
	ctx, cancel := requestCtx(cmd)
	defer cancel()
	out, err := newClient(apiBase).SubmitMove(ctx, session.GameID, move)
	if err != nil {
		var rejected *cl.MoveRejectedError
		if isMoveRejected(err, &rejected) {
			for _, msg := range rejected.Errors {
				printError(msg)
			}
			return nil
		}
		return err
	}
	next, _ := out["next"].(string)
	printSuccess("Move accepted. Next phase: " + next)
	return nil
}

func newBuyCmd(apiBase *string) *cobra.Command {
	var company, source string
	var par, order int
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy the open private company, or a share certificate",
		RunE: func(cmd *cobra.Command, args []string) error {
			move := map[string]any{"kind": "BUY"}
			if company != "" {
				move["company_id"] = company
				move["source"] = source
			}
			if par > 0 {
				move["ipo_price"] = par
			}
			if order > 0 {
				move["private_order"] = order
			}
			return submitMove(cmd, apiBase, move)
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "public company to buy a share of")
	cmd.Flags().StringVar(&source, "source", "ipo", "share source: ipo or bank")
	cmd.Flags().IntVar(&par, "par", 0, "IPO price when taking the president's certificate")
	cmd.Flags().IntVar(&order, "order", 0, "private company priority number")
	return cmd
}

func newBidCmd(apiBase *string) *cobra.Command {
	var order int
	cmd := &cobra.Command{
		Use:   "bid <amount>",
		Short: "Bid on a private company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			move := map[string]any{"kind": "BID", "amount": amount}
			if order > 0 {
				move["private_order"] = order
			}
			return submitMove(cmd, apiBase, move)
		},
	}
	cmd.Flags().IntVar(&order, "order", 0, "private company priority number")
	return cmd
}

func newPassCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pass",
		Short: "Pass the turn",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitMove(cmd, apiBase, map[string]any{"kind": "PASS"})
		},
	}
}

func newSellCmd(apiBase *string) *cobra.Command {
	var company, source string
	var par int
	cmd := &cobra.Command{
		Use:   "sell <company>:<percent>...",
		Short: "Sell share lots, optionally buying in the same turn",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sales []map[string]any
			for _, arg := range args {
				id, pctRaw, found := strings.Cut(arg, ":")
				if !found {
					return fmt.Errorf("lot %q must look like PRR:20", arg)
				}
				pct, err := strconv.Atoi(pctRaw)
				if err != nil {
					return fmt.Errorf("invalid percent in %q", arg)
				}
				sales = append(sales, map[string]any{"company_id": id, "percent": pct})
			}
			move := map[string]any{"kind": "SELL", "sales": sales}
			if company != "" {
				move["kind"] = "BUYSELL"
				move["company_id"] = company
				move["source"] = source
				if par > 0 {
					move["ipo_price"] = par
				}
			}
			return submitMove(cmd, apiBase, move)
		},
	}
	cmd.Flags().StringVar(&company, "buy", "", "company to also buy a share of this turn")
	cmd.Flags().StringVar(&source, "source", "ipo", "share source for the buy half")
	cmd.Flags().IntVar(&par, "par", 0, "IPO price when the buy half takes the president's certificate")
	return cmd
}

func newSellPrivateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sell-private <order>",
		Short: "Offer an owned private company for auction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid order %q", args[0])
			}
			return submitMove(cmd, apiBase, map[string]any{
				"kind":          "SELL_PRIVATE_COMPANY",
				"private_order": order,
			})
		},
	}
}

func newAcceptCmd(apiBase *string) *cobra.Command {
	var bidder string
	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept a bid in your private company auction",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitMove(cmd, apiBase, map[string]any{"kind": "ACCEPT", "bidder_id": bidder})
		},
	}
	cmd.Flags().StringVar(&bidder, "bidder", "", "player whose bid to accept")
	_ = cmd.MarkFlagRequired("bidder")
	return cmd
}

func newRejectCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reject",
		Short: "Reject every bid in your private company auction",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitMove(cmd, apiBase, map[string]any{"kind": "REJECT"})
		},
	}
}

func newLayCmd(apiBase *string) *cobra.Command {
	var cities, towns int
	cmd := &cobra.Command{
		Use:   "lay <hex> <color>",
		Short: "Lay or upgrade a tile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitMove(cmd, apiBase, map[string]any{
				"kind":        "LAY_TRACK",
				"hex":         args[0],
				"tile_color":  args[1],
				"tile_cities": cities,
				"tile_towns":  towns,
			})
		},
	}
	cmd.Flags().IntVar(&cities, "cities", 0, "cities on the tile")
	cmd.Flags().IntVar(&towns, "towns", 0, "towns on the tile")
	return cmd
}

func newTokenCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token <hex>",
		Short: "Place a station token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitMove(cmd, apiBase, map[string]any{
				"kind": "PLACE_TOKEN",
				"hex":  args[0],
			})
		},
	}
}

func newRunCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run <hex,hex,...>...",
		Short: "Run routes, one comma-separated stop list per train",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var routes [][]string
			for _, arg := range args {
				routes = append(routes, strings.Split(arg, ","))
			}
			return submitMove(cmd, apiBase, map[string]any{
				"kind":   "RUN_ROUTES",
				"routes": routes,
			})
		},
	}
}

func newTrainCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "train <kind>",
		Short: "Buy a train from the bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitMove(cmd, apiBase, map[string]any{
				"kind":       "BUY_TRAIN",
				"train_kind": args[0],
			})
		},
	}
}

func newDividendCmd(apiBase *string) *cobra.Command {
	var withhold bool
	cmd := &cobra.Command{
		Use:   "dividend",
		Short: "Pay out or withhold this turn's route revenue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitMove(cmd, apiBase, map[string]any{
				"kind":   "DIVIDEND",
				"payout": !withhold,
			})
		},
	}
	cmd.Flags().BoolVar(&withhold, "withhold", false, "send the revenue to the treasury instead")
	return cmd
}
