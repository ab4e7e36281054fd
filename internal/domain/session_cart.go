package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// SessionLine is what an anonymous cart remembers about a product. Name and
// Price are copied from the catalog when the line is first added and are not
// refreshed afterwards.
type SessionLine struct {
	Name     string
	Price    Money
	Quantity int
}

// SessionCart is an insertion-ordered mapping of product id to SessionLine.
// It serialises as a JSON object whose keys keep that order.
type SessionCart struct {
	order []int64
	lines map[int64]SessionLine
}

func NewSessionCart() *SessionCart {
	return &SessionCart{lines: make(map[int64]SessionLine)}
}

func (c *SessionCart) Len() int {
	return len(c.order)
}

func (c *SessionCart) Get(productID int64) (SessionLine, bool) {
	line, ok := c.lines[productID]
	return line, ok
}

// Add appends a new line or increments the quantity of an existing one.
// An existing line keeps its original name and price.
func (c *SessionCart) Add(productID int64, name string, price Money, quantity int) {
	if c.lines == nil {
		c.lines = make(map[int64]SessionLine)
	}

	if line, ok := c.lines[productID]; ok {
		line.Quantity += quantity
		c.lines[productID] = line
		return
	}

	c.order = append(c.order, productID)
	c.lines[productID] = SessionLine{Name: name, Price: price, Quantity: quantity}
}

// Set overwrites the quantity of an existing line and reports whether it was there.
func (c *SessionCart) Set(productID int64, quantity int) bool {
	line, ok := c.lines[productID]
	if !ok {
		return false
	}

	line.Quantity = quantity
	c.lines[productID] = line

	return true
}

func (c *SessionCart) Remove(productID int64) bool {
	if _, ok := c.lines[productID]; !ok {
		return false
	}

	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	return true
}

func (c *SessionCart) Lines() []PricedLine {
	result := make([]PricedLine, 0, len(c.order))

	for _, id := range c.order {
		line := c.lines[id]
		result = append(result, PricedLine{
			ProductID:   id,
			ProductName: line.Name,
			UnitPrice:   line.Price,
			Quantity:    line.Quantity,
		})
	}

	return result
}

type sessionLineJSON struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Quantity int             `json:"quantity"`
}

func (c *SessionCart) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, id := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		line := c.lines[id]
		value, err := json.Marshal(sessionLineJSON{
			Name:     line.Name,
			Price:    line.Price.Amount,
			Currency: line.Price.Currency.String(),
			Quantity: line.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("json.Marshal: %w", err)
		}

		buf.WriteString(strconv.Quote(strconv.FormatInt(id, 10)))
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (c *SessionCart) UnmarshalJSON(data []byte) error {
	c.order = nil
	c.lines = make(map[int64]SessionLine)

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("dec.Token: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("session cart must be a JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("dec.Token: %w", err)
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}

		productID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("product id[%s] is not valid: %w", key, err)
		}

		var raw sessionLineJSON
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("dec.Decode: %w", err)
		}

		cur, err := currency.ParseISO(raw.Currency)
		if err != nil {
			return fmt.Errorf("currency[%s] is not valid: %w", raw.Currency, err)
		}

		if _, dup := c.lines[productID]; !dup {
			c.order = append(c.order, productID)
		}
		c.lines[productID] = SessionLine{
			Name:     raw.Name,
			Price:    Money{Amount: raw.Price, Currency: cur},
			Quantity: raw.Quantity,
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("dec.Token: %w", err)
	}

	return nil
}
