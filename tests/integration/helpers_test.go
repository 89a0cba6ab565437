//go:build integration
// +build integration

package integration

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/tordrt/schemaevolve"
	"github.com/tordrt/schemaevolve/internal/db"
	"github.com/tordrt/schemaevolve/internal/signature"
)

const shopV1 = `
shop:
  Customer:
    fields:
      id: {type: auto_key, primary_key: true}
      username: {type: char, max_length: 50, unique: true}
      nickname: {type: char, max_length: 30, null: true}
  Order:
    fields:
      id: {type: auto_key, primary_key: true}
      customer: {type: foreign_key, related_model: shop.Customer}
      total: {type: integer}
`

const shopV2 = `
shop:
  Customer:
    fields:
      id: {type: auto_key, primary_key: true}
      login: {type: char, max_length: 50, unique: true}
      status: {type: char, max_length: 10}
  Order:
    fields:
      id: {type: auto_key, primary_key: true}
      customer: {type: foreign_key, related_model: shop.Customer}
      total: {type: integer}
  Product:
    fields:
      id: {type: auto_key, primary_key: true}
      name: {type: char, max_length: 100, db_index: true}
`

// shopV2Options turns username into login and backfills status.
var shopV2Options = &schemaevolve.Options{
	Renames:  []string{"shop.Customer.username=login"},
	Initials: map[string]any{"shop.Customer.status": "active"},
}

func mustParse(t *testing.T, doc string) *signature.Project {
	t.Helper()
	p, err := schemaevolve.ParseSignature(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Failed to parse signature: %v", err)
	}
	return p
}

// evolveShop creates the shop tables on an empty database and evolves them to
// shopV2.
func evolveShop(t *testing.T, url string) {
	t.Helper()
	ctx := context.Background()

	if _, err := schemaevolve.Evolve(ctx, url, signature.NewProject(), mustParse(t, shopV1), nil); err != nil {
		t.Fatalf("Failed to create shop tables: %v", err)
	}
	plan, err := schemaevolve.Evolve(ctx, url, mustParse(t, shopV1), mustParse(t, shopV2), shopV2Options)
	if err != nil {
		t.Fatalf("Failed to evolve shop tables: %v", err)
	}
	if plan.Empty() {
		t.Fatal("Expected a non-empty plan")
	}

	client, err := db.Open(ctx, url)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close(ctx)

	verifyColumns(t, client, "shop_customer", []string{"id", "login", "status"})
	verifyColumns(t, client, "shop_order", []string{"id", "customer_id", "total"})
	verifyColumns(t, client, "shop_product", []string{"id", "name"})
}

// dropShop removes the shop tables so the suite can run again.
func dropShop(t *testing.T, url string) {
	t.Helper()
	ctx := context.Background()
	if _, err := schemaevolve.Evolve(ctx, url, mustParse(t, shopV2), signature.NewProject(), nil); err != nil {
		t.Errorf("Failed to drop shop tables: %v", err)
	}
}

// verifyColumns checks that a table has exactly the expected columns, in any order.
func verifyColumns(t *testing.T, client db.Client, table string, expected []string) {
	t.Helper()

	columns, err := client.TableColumns(context.Background(), table)
	if err != nil {
		t.Fatalf("Failed to read columns of %s: %v", table, err)
	}
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	slices.Sort(names)
	want := slices.Clone(expected)
	slices.Sort(want)

	if !slices.Equal(names, want) {
		t.Errorf("Expected columns %v in %s, got %v", want, table, names)
	}
}

// verifyNullable checks the nullability of a column.
func verifyNullable(t *testing.T, client db.Client, table, column string, nullable bool) {
	t.Helper()

	columns, err := client.TableColumns(context.Background(), table)
	if err != nil {
		t.Fatalf("Failed to read columns of %s: %v", table, err)
	}
	for _, col := range columns {
		if col.Name == column {
			if col.Nullable != nullable {
				t.Errorf("Expected %s.%s nullable=%v, got %v", table, column, nullable, col.Nullable)
			}
			return
		}
	}
	t.Errorf("Column %s not found in table %s", column, table)
}
