package report

import (
	"fmt"
	"io"
	"unite-stats/internal/domain"

	"github.com/olekukonko/tablewriter"
)

// WriteRange renders a RangeResult as a table, one row per pokemon, in result order.
func WriteRange(out io.Writer, result *domain.RangeResult) error {
	fmt.Fprintf(out, "%s .. %s  matches: %d\n", result.StartDate, result.EndDate, result.NumberOfGames)

	table := tablewriter.NewWriter(out)
	table.Header("#", "Pokemon", "Games", "Wins", "Win rate")

	for i, p := range result.ResultPerPokemon {
		table.Append(
			fmt.Sprintf("%d", i+1),
			p.Pokemon,
			fmt.Sprintf("%d", p.NumberOfGames),
			fmt.Sprintf("%d", p.NumberOfWins),
			fmt.Sprintf("%.1f%%", WinRate(p)),
		)
	}

	return table.Render()
}

func WinRate(p domain.PokemonResult) float64 {
	if p.NumberOfGames == 0 {
		return 0
	}
	return float64(p.NumberOfWins) / float64(p.NumberOfGames) * 100
}
