package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
)

const sampleBody = `[
  {"Produto": "Modelagem preditiva", "Categoria do Produto": "livros", "Preço": 92.45, "Frete": 5.6096965236,
   "Data da Compra": "01/01/2020", "Vendedor": "Thiago Silva", "Local da compra": "BA",
   "Avaliação da compra": 1, "Tipo de pagamento": "cartao_credito", "Quantidade de parcelas": 3,
   "lat": -13.29, "lon": -41.71},
  {"Produto": "Iniciando em programação", "Categoria do Produto": "livros", "Preço": 43.84, "Frete": 0,
   "Data da Compra": "31/12/2022", "Vendedor": "Mariana Ferreira", "Local da compra": "SP",
   "Avaliação da compra": 5, "Tipo de pagamento": "boleto", "Quantidade de parcelas": 1,
   "lat": -22.19, "lon": -48.79}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.SourceConfig{URL: srv.URL, Timeout: 5 * time.Second}, observability.NewDiscardLogger())
}

func TestClient_Fetch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleBody))
	})

	rows, err := client.Fetch(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Fetch() returned %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.State != "BA" || first.Seller != "Thiago Silva" || first.Category != "livros" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.Price.String() != "92.45" {
		t.Errorf("Price = %s, want 92.45", first.Price)
	}
	if !first.PurchaseDate.Equal(time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PurchaseDate = %v, want 2020-01-01", first.PurchaseDate)
	}
	if first.Installments != 3 || first.Rating != 1 || first.PaymentType != "cartao_credito" {
		t.Errorf("optional fields not decoded: %+v", first)
	}
	if first.Lat != -13.29 || first.Lon != -41.71 {
		t.Errorf("coordinates = (%v, %v)", first.Lat, first.Lon)
	}

	if rows[1].PurchaseDate.Month() != time.December || rows[1].PurchaseDate.Day() != 31 {
		t.Errorf("dates must be day-first, got %v", rows[1].PurchaseDate)
	}
}

func TestClient_FetchForwardsQuery(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{name: "no filter", query: Query{}, want: ""},
		{name: "region", query: Query{Region: "nordeste"}, want: "regiao=nordeste"},
		{name: "region and year", query: Query{Region: "sul", Year: 2021}, want: "ano=2021&regiao=sul"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.RawQuery
				w.Write([]byte("[]"))
			})

			if _, err := client.Fetch(context.Background(), tt.query); err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("query = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_FetchEmptyArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	rows, err := client.Fetch(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("Fetch() = %#v, want empty non-nil slice", rows)
	}
}

func TestClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    errors.ErrorCode
		message string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", code: errors.CodeNetwork, message: "source returned status 500"},
		{name: "not found", status: http.StatusNotFound, body: "", code: errors.CodeNetwork, message: "source returned status 404"},
		{name: "not json", status: http.StatusOK, body: "<html>", code: errors.CodeParse, message: "response body is not a JSON array"},
		{name: "json object", status: http.StatusOK, body: `{"Preço": 1}`, code: errors.CodeParse, message: "response body is not a JSON array"},
		{name: "bad date", status: http.StatusOK, body: `[{"Preço": 1, "Data da Compra": "2020-01-01", "Local da compra": "SP", "Categoria do Produto": "x", "Vendedor": "y", "lat": 0, "lon": 0}]`, code: errors.CodeParse, message: "row 0: invalid field"},
		{name: "missing price", status: http.StatusOK, body: `[{"Data da Compra": "01/01/2020", "Local da compra": "SP", "Categoria do Produto": "x", "Vendedor": "y", "lat": 0, "lon": 0}]`, code: errors.CodeParse, message: "row 0: invalid field"},
		{name: "wrong price type", status: http.StatusOK, body: `[{"Preço": true}]`, code: errors.CodeParse, message: "row 0: invalid object"},
		{name: "quoted price", status: http.StatusOK, body: `[{"Preço": "12.5", "Data da Compra": "01/01/2020", "Local da compra": "SP", "Categoria do Produto": "x", "Vendedor": "y", "lat": 0, "lon": 0}]`, code: errors.CodeParse, message: "row 0: invalid object"},
		{name: "quoted freight", status: http.StatusOK, body: `[{"Preço": 12.5, "Frete": "3", "Data da Compra": "01/01/2020", "Local da compra": "SP", "Categoria do Produto": "x", "Vendedor": "y", "lat": 0, "lon": 0}]`, code: errors.CodeParse, message: "row 0: invalid object"},
		{name: "null body", status: http.StatusOK, body: `null`, code: errors.CodeParse, message: "response body is not a JSON array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			rows, err := client.Fetch(context.Background(), Query{})
			if rows != nil {
				t.Errorf("Fetch() returned rows on error: %+v", rows)
			}
			if !errors.Is(err, tt.code) {
				t.Fatalf("Fetch() error = %v, want code %s", err, tt.code)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Fetch() error = %q, want it to mention %q", err, tt.message)
			}
		})
	}
}

func TestClient_FetchStatusKeepsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream maintenance", http.StatusServiceUnavailable)
	})

	_, err := client.Fetch(context.Background(), Query{})
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Fetch() error type = %T, want *errors.AppError", err)
	}
	if appErr.Details != "upstream maintenance" {
		t.Errorf("Details = %q, want the response body", appErr.Details)
	}
}

func TestClient_FetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewWithHTTPClient(url, &http.Client{Timeout: time.Second}, observability.NewDiscardLogger())
	_, err := client.Fetch(context.Background(), Query{})
	if !errors.Is(err, errors.CodeNetwork) {
		t.Errorf("Fetch() error = %v, want code %s", err, errors.CodeNetwork)
	}
}

func TestClient_FetchRespectsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Fetch(ctx, Query{}); !errors.Is(err, errors.CodeNetwork) {
		t.Errorf("Fetch() error = %v, want code %s", err, errors.CodeNetwork)
	}
}

func TestDecode_FreightOptional(t *testing.T) {
	body := `[{"Preço": 10, "Data da Compra": "15/06/2021", "Local da compra": "RS", "Categoria do Produto": "esporte", "Vendedor": "João", "lat": -30, "lon": -53}]`

	rows, err := Decode(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !rows[0].Freight.IsZero() {
		t.Errorf("Freight = %s, want 0 when absent", rows[0].Freight)
	}
}

func TestDecode_PurchaseDateForms(t *testing.T) {
	tests := []struct {
		date string
		want time.Time
	}{
		{"05/02/2020", time.Date(2020, time.February, 5, 0, 0, 0, 0, time.UTC)},
		{"1/2/2020", time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{"31/12/2019", time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{"9/11/2021", time.Date(2021, time.November, 9, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			body := `[{"Preço": 10, "Data da Compra": "` + tt.date + `", "Local da compra": "RS", "Categoria do Produto": "esporte", "Vendedor": "João", "lat": -30, "lon": -53}]`

			rows, err := Decode(strings.NewReader(body))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !rows[0].PurchaseDate.Equal(tt.want) {
				t.Errorf("PurchaseDate = %v, want %v", rows[0].PurchaseDate, tt.want)
			}
		})
	}
}
