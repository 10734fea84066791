package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

const titleWidth = 48

// Console imprime los informes del CLI.
type Console struct {
	out io.Writer
}

// NewConsole crea una consola que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea una consola sobre w (tests).
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintArenas imprime el listado de arenas. saved marca los guardados.
func (c *Console) PrintArenas(arenas []domain.Arena, saved map[string]bool, now time.Time) {
	if len(arenas) == 0 {
		fmt.Fprintln(c.out, "No arenas found")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "ID", "Cat", "Arena", "Yes", "No", "Pool", "Players", "Ends")
	for i, a := range arenas {
		title := domain.Truncate(a.Title, titleWidth)
		if saved[a.ID] {
			title = "* " + title
		}
		ends := a.TimeRemaining(now)
		if a.IsResolved {
			ends = "resolved " + a.OutcomeLabel()
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			shortID(a.ID),
			string(a.Category),
			title,
			pctLabel(a.YesProbability()),
			pctLabel(a.NoProbability()),
			domain.FormatHBAR(a.PoolSize),
			fmt.Sprintf("%d", len(a.Participants)),
			ends,
		)
	}
	table.Render()
}

// PrintArena imprime la ficha de un arena con su market data.
func (c *Console) PrintArena(a domain.Arena, md domain.MarketData, source string, now time.Time) {
	fmt.Fprintf(c.out, "\n%s\n", a.Title)
	fmt.Fprintf(c.out, "  %s\n", a.Description)
	fmt.Fprintf(c.out, "  id %s | %s | pool %s | %d participants\n",
		a.ID, a.Category, domain.FormatHBAR(a.PoolSize), len(a.Participants))
	if a.IsResolved {
		fmt.Fprintf(c.out, "  RESOLVED: %s\n", a.OutcomeLabel())
	} else {
		fmt.Fprintf(c.out, "  ends in %s (%s)\n", a.TimeRemaining(now), a.Deadline.Format(time.RFC3339))
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Side", "Price", "Votes", "Implied")
	table.Append("YES", fmt.Sprintf("%.2f", md.CurrentYesPrice), fmt.Sprintf("%.0f", a.YesVotes), pctLabel(a.YesProbability()))
	table.Append("NO", fmt.Sprintf("%.2f", md.CurrentNoPrice), fmt.Sprintf("%.0f", a.NoVotes), pctLabel(a.NoProbability()))
	table.Render()

	fmt.Fprintf(c.out, "  volume %s | open interest %s | liquidity %s | data: %s\n",
		domain.FormatHBAR(md.TotalVolume), domain.FormatHBAR(md.OpenInterest), domain.FormatHBAR(md.Liquidity), source)
}

// PrintPriceHistory imprime la serie de un timeframe.
func (c *Console) PrintPriceHistory(samples []domain.PriceSample, tf domain.Timeframe) {
	if len(samples) == 0 {
		fmt.Fprintln(c.out, "No price history")
		return
	}
	layout := "15:04"
	if tf == domain.Timeframe7D || tf == domain.Timeframe30D {
		layout = "Jan 02 15:04"
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Time", "Yes", "No", "Volume")
	for _, s := range samples {
		label := s.Label
		if label == "" {
			label = s.Timestamp.Local().Format(layout)
		}
		table.Append(label, fmt.Sprintf("%.3f", s.YesPrice), fmt.Sprintf("%.3f", s.NoPrice), fmt.Sprintf("%.0f", s.Volume))
	}
	table.Render()

	first, last := samples[0], samples[len(samples)-1]
	fmt.Fprintf(c.out, "  %s: YES %.3f → %.3f (%+.1f pts)\n",
		tf, first.YesPrice, last.YesPrice, (last.YesPrice-first.YesPrice)*100)
}

// PrintQuote imprime el desglose previo a confirmar.
func (c *Console) PrintQuote(q domain.TradeQuote) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Field", "Value")
	table.Append("Side", string(q.Side))
	table.Append("Action", string(q.Action))
	table.Append("Shares", fmt.Sprintf("%.0f", q.Quantity))
	table.Append("Price", fmt.Sprintf("%.2f", q.Price))
	if q.Coverage > 0 {
		table.Append("Coverage", pctLabel(q.Coverage))
		table.Append("Premium rate", fmt.Sprintf("%.2f%%", q.PremiumRate*100))
		table.Append("Premium", fmt.Sprintf("%.2f", q.Premium))
	}
	table.Append("Total", fmt.Sprintf("%.2f HBAR", q.Total))
	table.Append("Max loss", fmt.Sprintf("%.2f", q.MaxLoss))
	table.Render()
}

// PrintTrade confirma un trade ejecutado.
func (c *Console) PrintTrade(t domain.Trade, balance decimal.Decimal) {
	fmt.Fprintf(c.out, "[%s] %s %.0f %s @ %.2f | total %.2f | balance %s HBAR | id %s\n",
		t.CreatedAt.Local().Format("15:04:05"),
		t.Action.LogAction(), t.Stake, t.Side, t.Price, t.Total, balance.StringFixed(2), t.ID)
}

// PrintActivity imprime el feed de actividad de un arena.
func (c *Console) PrintActivity(log []domain.TransactionLogEntry) {
	if len(log) == 0 {
		fmt.Fprintln(c.out, "No activity yet")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("User", "Action", "Shares", "Price", "When")
	for _, e := range log {
		shares := fmt.Sprintf("%.0f", e.Shares)
		price := fmt.Sprintf("%.2f", e.Price)
		if e.Action == domain.LogPayout || e.Action == domain.LogInsurancePayout {
			shares = "-"
			price = domain.FormatHBAR(e.Price)
		}
		table.Append(e.User, string(e.Action), shares, price, e.Time)
	}
	table.Render()
}

// SettlementInput agrupa lo que imprime PrintSettlement.
type SettlementInput struct {
	Arena       domain.Arena
	Settled     int
	Winners     int
	Losers      int
	TotalPayout float64
	Entries     []domain.TransactionLogEntry
}

// PrintSettlement resume una resolución.
func (c *Console) PrintSettlement(in SettlementInput) {
	fmt.Fprintf(c.out, "\n  %s resolved %s\n", in.Arena.Title, in.Arena.OutcomeLabel())
	fmt.Fprintf(c.out, "  %d trades settled | %d won | %d lost | paid %s\n",
		in.Settled, in.Winners, in.Losers, domain.FormatHBAR(in.TotalPayout))
	if len(in.Entries) > 0 {
		c.PrintActivity(in.Entries)
	}
}

// PrintResults imprime los trades del usuario con su resultado.
func (c *Console) PrintResults(rows []domain.ResultRow, sum domain.ResultSummary) {
	fmt.Fprintf(c.out, "\n  rewards %s | wins %d/%d | win rate %.1f%%\n\n",
		domain.FormatHBAR(sum.TotalRewards), sum.Wins, sum.Total, sum.WinRate)
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No trades yet")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("When", "Arena", "Side", "Shares", "Price", "Status", "Outcome", "Result")
	for _, r := range rows {
		t := r.Trade
		result := "-"
		if !t.IsOpen() {
			result = fmt.Sprintf("%+.0f", t.NetResult())
		}
		outcome := r.Outcome
		if outcome == "" {
			outcome = "pending"
		}
		table.Append(
			t.CreatedAt.Local().Format("01-02 15:04"),
			domain.Truncate(r.ArenaTitle, 36),
			fmt.Sprintf("%s %s", t.Action, t.Side),
			fmt.Sprintf("%.0f", t.Stake),
			fmt.Sprintf("%.2f", t.Price),
			strings.ToUpper(string(t.Status)),
			outcome,
			result,
		)
	}
	table.Render()
}

// PrintLeaderboard imprime el ranking.
func (c *Console) PrintLeaderboard(entries []domain.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No predictions yet. Be the first to climb the leaderboard!")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Rank", "User", "Predictions", "Correct", "Win rate", "Rewards")
	for _, e := range entries {
		table.Append(
			fmt.Sprintf("%d", e.Rank),
			domain.FormatAddress(e.UserID),
			fmt.Sprintf("%d", e.TotalPredictions),
			fmt.Sprintf("%d", e.CorrectPredictions),
			fmt.Sprintf("%.1f%%", e.WinRate),
			domain.FormatHBAR(e.TotalRewards),
		)
	}
	table.Render()
}

// WatchStatus es la línea compacta del modo watch.
type WatchStatus struct {
	Arena  domain.Arena
	Latest domain.PriceSample
	Remote bool
	Now    time.Time
}

// PrintWatchStatus imprime una línea por tick del modo watch.
func (c *Console) PrintWatchStatus(s WatchStatus) {
	source := "synthetic"
	if s.Remote {
		source = "remote"
	}
	fmt.Fprintf(c.out, "[%s] %s | YES %.3f NO %.3f | vol %.0f | %s | %s\n",
		s.Now.Local().Format("15:04:05"),
		domain.Truncate(s.Arena.Title, 32),
		s.Latest.YesPrice, s.Latest.NoPrice, s.Latest.Volume,
		s.Arena.Countdown(s.Now),
		source,
	)
}

func pctLabel(p float64) string {
	return fmt.Sprintf("%.0f%%", p*100)
}

// shortID acorta los uuid; los ids cortos de demo se quedan igual.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
