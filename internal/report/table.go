package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"arbscan/internal/model"
)

// TrendFunc looks up the display trend for a token on an exchange. May be
// nil, in which case no arrows are rendered.
type TrendFunc func(token, exchange string) model.Trend

// TableSink renders each reporting cycle as a terminal table, with net
// profit colored by sign and trend arrows next to the venues.
type TableSink struct {
	out   io.Writer
	trend TrendFunc

	profit *color.Color
	loss   *color.Color
}

// NewTableSink writes tables to out.
func NewTableSink(out io.Writer, trend TrendFunc) *TableSink {
	return &TableSink{
		out:    out,
		trend:  trend,
		profit: color.New(color.FgGreen),
		loss:   color.New(color.FgRed),
	}
}

// Publish renders the cycle. An empty cycle prints a single line instead of
// an empty table.
func (s *TableSink) Publish(_ context.Context, opportunities []model.ArbitrageOpportunity) error {
	if len(opportunities) == 0 {
		_, err := fmt.Fprintf(s.out, "[%s] no opportunities above threshold\n", time.Now().Format(time.TimeOnly))
		return err
	}

	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{"TOKEN", "BUY @", "SELL @", "BUY PRICE", "SELL PRICE", "GROSS", "COST", "NET", "MARGIN"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, opp := range opportunities {
		net := opp.NetProfit.StringFixed(2)
		if opp.NetProfit.IsPositive() {
			net = s.profit.Sprint(net)
		} else {
			net = s.loss.Sprint(net)
		}
		table.Append([]string{
			opp.Token,
			s.venue(opp.Token, opp.BuyExchange),
			s.venue(opp.Token, opp.SellExchange),
			opp.BuyPrice.StringFixed(4),
			opp.SellPrice.StringFixed(4),
			opp.GrossProfit.StringFixed(2),
			opp.Costs.Total.StringFixed(2),
			net,
			opp.ProfitMarginPct.StringFixed(3) + "%",
		})
	}
	table.Render()
	return nil
}

func (s *TableSink) venue(token, exchange string) string {
	if s.trend == nil {
		return exchange
	}
	return fmt.Sprintf("%s %s", exchange, s.trend(token, exchange).Arrow())
}
