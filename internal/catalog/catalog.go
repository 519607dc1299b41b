package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"storefront/internal/models"
)

//go:embed products.json
var defaultProducts []byte

// featuredMinRating is the rating from which a product is shown as featured
const featuredMinRating = 4.3

// Catalog is a read-only product list loaded once at startup
type Catalog struct {
	products []models.Product
	byID     map[string]int
}

// Filter narrows a product listing. Nil bounds are ignored.
type Filter struct {
	Category    string   `json:"category"`
	Brand       string   `json:"brand"`
	MinPrice    *int64   `json:"min_price"`
	MaxPrice    *int64   `json:"max_price"`
	MinRating   *float64 `json:"min_rating"`
	SearchQuery string   `json:"search_query"`
}

// Load reads products from path, or the embedded default set when path is empty
func Load(path string) (*Catalog, error) {
	data := defaultProducts
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(products)
}

// New builds a catalog from products; ids must be unique and non-empty
func New(products []models.Product) (*Catalog, error) {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: product at index %d has no id", models.ErrInvalidInput, i)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %s", models.ErrInvalidInput, p.ID)
		}
		byID[p.ID] = i
	}
	return &Catalog{products: slices.Clone(products), byID: byID}, nil
}

// Get returns the product with the given id
func (c *Catalog) Get(id string) (models.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: product %s", models.ErrNotFound, id)
	}
	return c.products[i], nil
}

// List returns all products in catalog order
func (c *Catalog) List() []models.Product {
	return slices.Clone(c.products)
}

// Search matches q case-insensitively against name, description, brand and category.
// An empty query returns everything.
func (c *Catalog) Search(q string) []models.Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return c.List()
	}
	return c.where(func(p models.Product) bool { return matches(p, q) })
}

// Filter applies every set criterion of f
func (c *Catalog) Filter(f Filter) []models.Product {
	q := strings.ToLower(strings.TrimSpace(f.SearchQuery))
	return c.where(func(p models.Product) bool {
		switch {
		case q != "" && !matches(p, q):
			return false
		case f.Category != "" && p.Category != f.Category:
			return false
		case f.Brand != "" && p.Brand != f.Brand:
			return false
		case f.MinPrice != nil && p.Price < *f.MinPrice:
			return false
		case f.MaxPrice != nil && p.Price > *f.MaxPrice:
			return false
		case f.MinRating != nil && p.Rating < *f.MinRating:
			return false
		}
		return true
	})
}

// Featured returns up to limit well rated products
func (c *Catalog) Featured(limit int) []models.Product {
	featured := c.where(func(p models.Product) bool { return p.Rating >= featuredMinRating })
	if limit >= 0 && len(featured) > limit {
		featured = featured[:limit]
	}
	return featured
}

// Categories returns the sorted distinct categories
func (c *Catalog) Categories() []string {
	return c.distinct(func(p models.Product) string { return p.Category })
}

// Brands returns the sorted distinct brands
func (c *Catalog) Brands() []string {
	return c.distinct(func(p models.Product) string { return p.Brand })
}

func (c *Catalog) where(keep func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) distinct(field func(models.Product) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range c.products {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func matches(p models.Product, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(p.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Description), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Brand), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Category), lowerQuery)
}

// GetProduct lets the in-process catalog serve as a product lookup for carts
func (c *Catalog) GetProduct(_ context.Context, id string) (models.Product, error) {
	return c.Get(id)
}
