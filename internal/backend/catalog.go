package backend

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mrirakib04/sks-web/internal/domain"
)

// SortKey orders a product listing the way the products page offers.
type SortKey string

const (
	SortNone         SortKey = ""
	SortLatest       SortKey = "latest"
	SortPriceLowHigh SortKey = "price-low-high"
	SortPriceHighLow SortKey = "price-high-low"
	SortDiscount     SortKey = "discount"
)

var ErrUnknownSort = errors.New("unknown sort key")

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortLatest, SortPriceLowHigh, SortPriceHighLow, SortDiscount:
		return k, nil
	default:
		return SortNone, ErrUnknownSort
	}
}

// Products lists the catalog. An empty category or "all" lists everything.
func (c *Client) Products(ctx context.Context, category string) ([]domain.Product, error) {
	path := "/products"
	if category != "" && !strings.EqualFold(category, "all") {
		path += "?category=" + url.QueryEscape(category)
	}

	var products []domain.Product
	if err := c.get(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "/product/"+escape(id), &p); err != nil {
		return domain.Product{}, err
	}
	if p.ID == "" {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

func (c *Client) Search(ctx context.Context, key string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products/search/"+escape(key), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) HomeProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/home/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.get(ctx, "/settings/category", &categories); err != nil {
		return nil, err
	}
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].Index < categories[j].Index })
	return categories, nil
}

func (c *Client) Banners(ctx context.Context) ([]domain.Banner, error) {
	var banners []domain.Banner
	if err := c.get(ctx, "/settings/banner", &banners); err != nil {
		return nil, err
	}
	sort.SliceStable(banners, func(i, j int) bool { return banners[i].Index < banners[j].Index })
	return banners, nil
}

// SortProducts returns a sorted copy. Ties keep their backend order.
func SortProducts(products []domain.Product, key SortKey) []domain.Product {
	out := append([]domain.Product(nil), products...)

	var less func(a, b domain.Product) bool
	switch key {
	case SortLatest:
		less = func(a, b domain.Product) bool { return postedAt(a).After(postedAt(b)) }
	case SortPriceLowHigh:
		less = func(a, b domain.Product) bool { return a.DiscountedPrice < b.DiscountedPrice }
	case SortPriceHighLow:
		less = func(a, b domain.Product) bool { return a.DiscountedPrice > b.DiscountedPrice }
	case SortDiscount:
		less = func(a, b domain.Product) bool { return a.Discount > b.Discount }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

var postedLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func postedAt(p domain.Product) time.Time {
	for _, layout := range postedLayouts {
		if t, err := time.Parse(layout, p.PostedDate); err == nil {
			return t
		}
	}
	return time.Time{}
}
