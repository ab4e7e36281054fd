package cart

import (
	"fmt"

	"github.com/nikolayk812/herbalshop/internal/domain"
	"golang.org/x/text/currency"
)

type Summary struct {
	TotalItems int
	TotalPrice domain.Money
}

// Totals sums quantities and line totals. An empty slice yields zero items
// and a zero price in cur. A line priced in another currency is an error.
func Totals(lines []domain.PricedLine, cur currency.Unit) (Summary, error) {
	summary := Summary{TotalPrice: domain.ZeroMoney(cur)}

	for _, l := range lines {
		total, err := summary.TotalPrice.Add(l.Total())
		if err != nil {
			return Summary{}, fmt.Errorf("product[%d]: %w", l.ProductID, err)
		}

		summary.TotalPrice = total
		summary.TotalItems += l.Quantity
	}

	return summary, nil
}

func snapshotOf(lines []domain.PricedLine, cur currency.Unit) (Snapshot, error) {
	summary, err := Totals(lines, cur)
	if err != nil {
		return Snapshot{}, fmt.Errorf("Totals: %w", err)
	}

	return Snapshot{Lines: lines, Summary: summary}, nil
}
