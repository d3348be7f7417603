package main

import (
	"encoding/json"
	"errors"
	"fmt"

	cl "ironrails/internal/cli"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

type playerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cash     int    `json:"cash"`
	Bankrupt bool   `json:"bankrupt"`
}

type companyView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IPOShares  int    `json:"ipo_shares"`
	BankShares int    `json:"bank_shares"`
	BankPrice  int    `json:"bank_price"`
	Treasury   int    `json:"treasury"`
	Floated    bool   `json:"floated"`
	Bankrupt   bool   `json:"bankrupt"`
}

type privateView struct {
	Order         int    `json:"order"`
	Name          string `json:"name"`
	ActualCost    int    `json:"actual_cost"`
	Revenue       int    `json:"revenue"`
	OwnerPlayerID string `json:"owner_player_id"`
}

type journalEntry struct {
	Seq    int      `json:"seq"`
	State  string   `json:"state"`
	Kind   string   `json:"kind"`
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
	Next   string   `json:"next"`
}

func printSuccess(msg string) { success.Println(msg) }
func printError(msg string)   { danger.Println(msg) }
func printInfo(msg string)    { neutral.Println(msg) }

// reencode round-trips a decoded JSON fragment into a typed view.
func reencode(in any, out any) bool {
	raw, err := json.Marshal(in)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func printState(out map[string]any) {
	state, _ := out["state"].(string)
	actor, _ := out["actor"].(string)
	accent.Printf("Phase: %s   To act: %s\n", state, actor)

	var players []playerView
	if reencode(out["players"], &players) && len(players) > 0 {
		neutral.Println("\nPlayers")
		for _, p := range players {
			mark := " "
			if p.ID == actor {
				mark = "*"
			}
			status := ""
			if p.Bankrupt {
				status = "  BANKRUPT"
			}
			fmt.Printf(" %s %-12s %-38s cash %d%s\n", mark, p.Name, p.ID, p.Cash, status)
		}
	}

	var companies []companyView
	if reencode(out["companies"], &companies) && len(companies) > 0 {
		neutral.Println("\nCompanies")
		for _, c := range companies {
			if !c.Floated && c.IPOShares == 100 {
				continue
			}
			status := ""
			if c.Bankrupt {
				status = "  BANKRUPT"
			}
			fmt.Printf("   %-6s price %-4d treasury %-6d ipo %d%%  pool %d%%%s\n",
				c.ID, c.BankPrice, c.Treasury, c.IPOShares, c.BankShares, status)
		}
	}

	var privates []privateView
	if reencode(out["privates"], &privates) && len(privates) > 0 {
		neutral.Println("\nPrivate companies")
		for _, p := range privates {
			owner := "for sale"
			if p.OwnerPlayerID != "" {
				owner = "owned by " + p.OwnerPlayerID
			}
			fmt.Printf("   #%d %-24s cost %-4d income %-3d %s\n", p.Order, p.Name, p.ActualCost, p.Revenue, owner)
		}
	}
}

func printJournal(out map[string]any) {
	var entries []journalEntry
	if !reencode(out["journal"], &entries) || len(entries) == 0 {
		printInfo("No moves yet.")
		return
	}
	for _, e := range entries {
		if e.OK {
			fmt.Printf("%4d  %-16s %-20s -> %s\n", e.Seq, e.State, e.Kind, e.Next)
			continue
		}
		danger.Printf("%4d  %-16s %-20s rejected", e.Seq, e.State, e.Kind)
		if len(e.Errors) > 0 {
			danger.Printf(": %s", e.Errors[0])
		}
		fmt.Println()
	}
}

func isMoveRejected(err error, target **cl.MoveRejectedError) bool {
	return errors.As(err, target)
}
