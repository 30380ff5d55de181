package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

const maxErrorBody = 512

// Query narrows the upstream dataset. Zero values are not sent.
type Query struct {
	Region string
	Year   int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Region != "" {
		v.Set("regiao", q.Region)
	}
	if q.Year > 0 {
		v.Set("ano", fmt.Sprint(q.Year))
	}
	return v
}

type Client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

func New(cfg config.SourceConfig, logger *slog.Logger) *Client {
	return &Client{
		url:    cfg.URL,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// NewWithHTTPClient is used when the caller controls transport, e.g. httptest servers.
func NewWithHTTPClient(rawURL string, hc *http.Client, logger *slog.Logger) *Client {
	return &Client{url: rawURL, http: hc, logger: logger}
}

// Fetch issues one GET and returns the typed row set.
func (c *Client) Fetch(ctx context.Context, q Query) ([]models.Transaction, error) {
	target, err := url.Parse(c.url)
	if err != nil {
		return nil, errors.NetworkWrap(err, "invalid source URL")
	}
	params := target.Query()
	for k, vs := range q.values() {
		params[k] = vs
	}
	target.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, errors.NetworkWrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NetworkWrap(err, "fetch product sales")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		appErr := errors.Network(fmt.Sprintf("source returned status %d", resp.StatusCode))
		appErr.Details = strings.TrimSpace(string(body))
		return nil, appErr
	}

	rows, err := Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched product sales",
		"url", target.String(),
		"rows", len(rows),
		"duration", time.Since(start),
	)
	return rows, nil
}

// wireRow mirrors one upstream object. Pointer fields distinguish absent from zero.
type wireRow struct {
	Product      string           `json:"Produto"`
	Category     *string          `json:"Categoria do Produto"`
	Price        *number          `json:"Preço"`
	Freight      *number          `json:"Frete"`
	PurchaseDate *string          `json:"Data da Compra"`
	Seller       *string          `json:"Vendedor"`
	State        *string          `json:"Local da compra"`
	Rating       int              `json:"Avaliação da compra"`
	PaymentType  string           `json:"Tipo de pagamento"`
	Installments int              `json:"Quantidade de parcelas"`
	Lat          *float64         `json:"lat"`
	Lon          *float64         `json:"lon"`
}

// number is a decimal that only accepts a bare JSON number. decimal.Decimal on
// its own also takes quoted strings.
type number struct {
	decimal.Decimal
}

func (n *number) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || (b[0] != '-' && (b[0] < '0' || b[0] > '9')) {
		return fmt.Errorf("want a JSON number, got %s", b)
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	n.Decimal = d
	return nil
}

// Decode parses a JSON array of sale objects. Any row with a missing or mistyped
// required field, or a purchase date not in dd/mm/yyyy, fails the whole set.
func Decode(r io.Reader) ([]models.Transaction, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.ParseWrap(err, "response body is not a JSON array")
	}
	if raw == nil {
		return nil, errors.Parse("response body is not a JSON array")
	}

	rows := make([]models.Transaction, 0, len(raw))
	for i, msg := range raw {
		var w wireRow
		if err := json.Unmarshal(msg, &w); err != nil {
			return nil, errors.ParseWrap(err, fmt.Sprintf("row %d: invalid object", i))
		}
		tx, err := w.transaction()
		if err != nil {
			return nil, errors.ParseWrap(err, fmt.Sprintf("row %d: invalid field", i))
		}
		rows = append(rows, tx)
	}
	return rows, nil
}

func (w wireRow) transaction() (models.Transaction, error) {
	switch {
	case w.Price == nil:
		return models.Transaction{}, fmt.Errorf("missing %q", "Preço")
	case w.PurchaseDate == nil:
		return models.Transaction{}, fmt.Errorf("missing %q", "Data da Compra")
	case w.State == nil:
		return models.Transaction{}, fmt.Errorf("missing %q", "Local da compra")
	case w.Category == nil:
		return models.Transaction{}, fmt.Errorf("missing %q", "Categoria do Produto")
	case w.Seller == nil:
		return models.Transaction{}, fmt.Errorf("missing %q", "Vendedor")
	case w.Lat == nil || w.Lon == nil:
		return models.Transaction{}, fmt.Errorf("missing coordinates")
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(*w.PurchaseDate))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("purchase date %q: %w", *w.PurchaseDate, err)
	}

	tx := models.Transaction{
		Product:      w.Product,
		Category:     *w.Category,
		Price:        w.Price.Decimal,
		PurchaseDate: date,
		Seller:       *w.Seller,
		State:        *w.State,
		Rating:       w.Rating,
		PaymentType:  w.PaymentType,
		Installments: w.Installments,
		Lat:          *w.Lat,
		Lon:          *w.Lon,
	}
	if w.Freight != nil {
		tx.Freight = w.Freight.Decimal
	}
	return tx, nil
}
