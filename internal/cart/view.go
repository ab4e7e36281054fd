package cart

import (
	"context"

	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/shopspring/decimal"
)

type MoneyView struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// LineView is the backend-independent shape of one cart line.
type LineView struct {
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   MoneyView `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   MoneyView `json:"line_total"`
}

type View struct {
	Items      []LineView `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice MoneyView  `json:"total_price"`
}

func NewMoneyView(m domain.Money) MoneyView {
	return MoneyView{Amount: m.Amount, Currency: m.Currency.String()}
}

// Render reads the cart once and maps it to a View.
func Render(ctx context.Context, c Cart) (View, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return View{}, err
	}

	return ViewOf(s), nil
}

func ViewOf(s Snapshot) View {
	items := make([]LineView, 0, len(s.Lines))
	for _, l := range s.Lines {
		items = append(items, LineView{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   NewMoneyView(l.UnitPrice),
			Quantity:    l.Quantity,
			LineTotal:   NewMoneyView(l.Total()),
		})
	}

	return View{
		Items:      items,
		TotalItems: s.TotalItems,
		TotalPrice: NewMoneyView(s.TotalPrice),
	}
}
