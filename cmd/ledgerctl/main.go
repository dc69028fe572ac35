// Command ledgerctl is a terminal front end for the ledger API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"kitchen_ledger/internal/client"
	"kitchen_ledger/internal/forecast"
	"kitchen_ledger/internal/sales"
)

const usage = `usage: ledgerctl [-addr URL] <command> [flags]

commands:
  ingredients                    list ingredients
  low-stock                      list ingredients below their threshold
  recipes                        list recipes with current cost
  sell -recipe ID -qty N [-date YYYY-MM-DD]
  history [-recipe ID] [-from YYYY-MM-DD] [-to YYYY-MM-DD]
  forecast [-window 7|30|90] [-margin 0.2]
`

func main() {
	addr := flag.String("addr", envOr("LEDGER_API_URL", "http://localhost:8081"), "ledger API base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	c := client.New(*addr, *timeout)
	defer c.Close()

	if err := run(context.Background(), c, os.Stdout, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ledgerctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, out io.Writer, cmd string, args []string) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	switch cmd {
	case "ingredients", "low-stock":
		list, err := c.Ingredients(ctx, cmd == "low-stock")
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tUNIT\tCOST/UNIT\tTHRESHOLD\tLOW")
		for _, i := range list {
			fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%.2f\t%g\t%t\n", i.ID, i.Name, i.Quantity, i.Unit, i.CostPerUnit, i.Threshold, i.Low)
		}

	case "recipes":
		list, err := c.Recipes(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME\tINGREDIENTS\tCOST")
		for _, r := range list {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", r.ID, r.Name, len(r.Lines), r.Cost)
		}

	case "sell":
		fs := flag.NewFlagSet("sell", flag.ContinueOnError)
		recipeID := fs.String("recipe", "", "recipe id")
		qty := fs.Float64("qty", 0, "quantity sold")
		date := fs.String("date", "", "sale date, defaults to today")
		if err := fs.Parse(args); err != nil {
			return err
		}
		in := sales.SaleInput{RecipeID: *recipeID, QuantitySold: *qty}
		if *date != "" {
			d, err := sales.ParseDate(*date)
			if err != nil {
				return err
			}
			in.SaleDate = d
		}
		receipt, err := c.RecordSale(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "sale %s recorded on %s\n", receipt.Sale.ID, receipt.Sale.SaleDate)
		for _, s := range receipt.Shortfalls {
			fmt.Fprintf(tw, "warning: not enough %s\tavailable %g\trequired %g\n", s.Name, s.Available, s.Required)
		}

	case "history":
		fs := flag.NewFlagSet("history", flag.ContinueOnError)
		recipeID := fs.String("recipe", "", "only this recipe")
		from := fs.String("from", "", "first day, inclusive")
		to := fs.String("to", "", "last day, inclusive")
		if err := fs.Parse(args); err != nil {
			return err
		}
		start, err := optionalDate(*from)
		if err != nil {
			return err
		}
		end, err := optionalDate(*to)
		if err != nil {
			return err
		}
		rows, err := c.History(ctx, *recipeID, start, end)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tDATE\tRECIPE\tQUANTITY")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%g\n", r.ID, r.SaleDate, r.RecipeName, r.QuantitySold)
		}

	case "forecast":
		fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
		window := fs.Int("window", int(forecast.Week), "trailing window in days: 7, 30 or 90")
		margin := fs.Float64("margin", 0.20, "profit margin as a fraction")
		if err := fs.Parse(args); err != nil {
			return err
		}
		rows, err := c.Forecast(ctx, forecast.Window(*window), *margin)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tRECIPE\tCOST\tPREDICTED DEMAND\tSUGGESTED PRICE")
		for _, p := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\n", p.RecipeID, p.Name, p.Cost, p.PredictedDemand, p.SuggestedPrice)
		}

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func optionalDate(s string) (sales.Date, error) {
	if s == "" {
		return sales.Date{}, nil
	}
	return sales.ParseDate(s)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
