package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"FXSentinel/internal/dashboard"
	"FXSentinel/internal/risk"
	"FXSentinel/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	checkPair   string
	checkSL     float64
	checkTP     float64
	checkOutput string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate one pair and print the result",
	Example: `  fxsentinel check --pair USD/JPY
  fxsentinel check --pair EUR/USD --sl 0.75 --tp 1.5 --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		req := dashboard.Request{Pair: checkPair}
		if cmd.Flags().Changed("sl") || cmd.Flags().Changed("tp") {
			rp := a.dash.RiskParams()
			if cmd.Flags().Changed("sl") {
				rp.SLMultiplier = checkSL
			}
			if cmd.Flags().Changed("tp") {
				rp.TPMultiplier = checkTP
			}
			if err := risk.Validate(rp); err != nil {
				return err
			}
			req.Risk = &rp
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		res, err := a.dash.Evaluate(ctx, req)
		if err != nil {
			return err
		}

		switch checkOutput {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		case "text":
			printResult(cmd.OutOrStdout(), res)
			return nil
		default:
			return fmt.Errorf("unknown output format %q", checkOutput)
		}
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkPair, "pair", "p", "", "pair to evaluate (default: stored selection)")
	checkCmd.Flags().Float64Var(&checkSL, "sl", 0, "stop-loss ATR multiplier for this run")
	checkCmd.Flags().Float64Var(&checkTP, "tp", 0, "take-profit ATR multiplier for this run")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "text", "output format: text or json")
}

func printResult(w io.Writer, res *dashboard.Result) {
	fmt.Fprintf(w, "%s  %s\n", res.Pair, res.EvaluatedAt.In(cfgDisplayZone()).Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(w, "Window:  %s (%s)\n", res.Window, res.WindowReason)
	fmt.Fprintf(w, "Signal:  %s  %s\n", res.Signal.State, res.Signal.Reason)

	snap := res.Snapshot
	if snap == nil || snap.Indicators == nil {
		if snap != nil && snap.Error != "" {
			fmt.Fprintf(w, "Data:    unavailable: %s\n", snap.Error)
		}
		return
	}
	ind := snap.Indicators
	fmt.Fprintf(w, "Trend:   %s\n", res.Trend)
	fmt.Fprintf(w, "Price:   %s\n", fmtOpt(ind.CurrentPrice, 5))
	fmt.Fprintf(w, "ATR:     %s pips\n", fmtOpt(ind.ATRPips, 1))
	fmt.Fprintf(w, "ADR:     %s%%\n", fmtOpt(ind.ADRUsagePct, 0))
	fmt.Fprintf(w, "RSI D1:  %s  M30: %s\n", fmtOpt(ind.RSIDaily, 1), fmtOpt(ind.RSIM30, 1))
	if snap.IsStale {
		fmt.Fprintln(w, "Data:    STALE")
	}

	if r := res.Risk; r != nil {
		fmt.Fprintf(w, "Stop:    %.1f pips (x%.2f)  long %s  short %s\n", r.SLPips, res.Params.SLMultiplier, fmtOpt(r.SLPriceLong, 5), fmtOpt(r.SLPriceShort, 5))
		fmt.Fprintf(w, "Target:  %.1f pips (x%.2f)  long %s  short %s\n", r.TPPips, res.Params.TPMultiplier, fmtOpt(r.TPPriceLong, 5), fmtOpt(r.TPPriceShort, 5))
	}

	if res.News == nil {
		return
	}
	if res.News.NewsError {
		fmt.Fprintf(w, "News:    unverified: %s\n", res.News.Error)
		return
	}
	loc := cfgDisplayZone()
	for _, ev := range res.News.Upcoming {
		fmt.Fprintf(w, "News:    %s  %s %s %s\n", ev.Time.In(loc).Format("Mon 15:04"), ev.Currency, ev.Name, strings.ToUpper(ev.Impact))
	}
}

func fmtOpt(v *float64, prec int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

func cfgDisplayZone() *time.Location {
	if loc, err := time.LoadLocation(cfg.Session.DisplayZone); err == nil {
		return loc
	}
	return time.UTC
}
