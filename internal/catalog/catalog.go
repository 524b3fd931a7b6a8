package catalog

import (
	"errors"

	"github.com/fjod/goldshop/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

const (
	smallPackImage = "https://cdn.poehali.dev/projects/87ecf3a4-ad58-4229-983f-07129648aebd/files/ef08534c-7e01-42f0-9c06-7b3b4c0f3f84.jpg"
	largePackImage = "https://cdn.poehali.dev/projects/87ecf3a4-ad58-4229-983f-07129648aebd/files/d0e291fe-7024-4999-9c27-265636d7e3d5.jpg"
)

// Catalog is the ordered, read-only list of gold packs on sale.
type Catalog struct {
	products []domain.Product
	byID     map[int64]int
}

func New(products []domain.Product) *Catalog {
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

// Default returns the built-in storefront catalog.
func Default() *Catalog {
	return New([]domain.Product{
		{ID: 1, Name: "100 GOLD", Amount: 100, Price: decimal.NewFromInt(119), Discount: 15, Image: smallPackImage},
		{ID: 2, Name: "500 GOLD", Amount: 500, Price: decimal.NewFromInt(499), Discount: 15, Image: smallPackImage},
		{ID: 3, Name: "1000 GOLD", Amount: 1000, Price: decimal.NewFromInt(899), Discount: 25, Image: largePackImage},
		{ID: 4, Name: "3000 GOLD", Amount: 3000, Price: decimal.NewFromInt(1999), Discount: 45, Image: largePackImage},
	})
}

// Products returns the catalog in display order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Lookup(id int64) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}
