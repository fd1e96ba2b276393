package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/mrirakib04/sks-web/internal/pricing"
)

// ProductForm is the add/edit product form. Images holds up to three files;
// a nil entry is an empty file input.
type ProductForm struct {
	Name        string
	Description string
	Price       float64
	Discount    int
	Category    string
	InStock     bool
	Images      [3]*Image
}

func (f ProductForm) validate() error {
	var problems []string
	if strings.TrimSpace(f.Name) == "" {
		problems = append(problems, "name is required")
	}
	if f.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if f.Discount < 0 || f.Discount > 100 {
		problems = append(problems, "discount must be between 0 and 100")
	}
	if strings.TrimSpace(f.Category) == "" {
		problems = append(problems, "category is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProduct, strings.Join(problems, "; "))
	}
	return nil
}

func (f ProductForm) hasImages() bool {
	for _, img := range f.Images {
		if img != nil {
			return true
		}
	}
	return false
}

func (c *Console) Products(ctx context.Context) ([]domain.Product, error) {
	return c.backend.AdminProducts(ctx)
}

func (c *Console) Product(ctx context.Context, id string) (domain.Product, error) {
	return c.backend.AdminProduct(ctx, id)
}

// CreateProduct uploads the images first and creates the product only if at
// least one of them made it. New products start in stock.
func (c *Console) CreateProduct(ctx context.Context, actor string, f ProductForm) (string, error) {
	if f.Images[0] == nil {
		c.notifier.Notify(notify.LevelError, NoticeImageRequired)
		return "", ErrImageRequired
	}
	if err := f.validate(); err != nil {
		return "", err
	}

	images := c.uploadImages(ctx, f.Images)
	if len(images) == 0 {
		c.notifier.Notify(notify.LevelWarning, NoticeNoImages)
		return "", ErrNoImages
	}

	p := domain.Product{
		Name:            f.Name,
		Description:     f.Description,
		Price:           f.Price,
		Discount:        f.Discount,
		DiscountedPrice: pricing.DiscountedPrice(f.Price, f.Discount),
		Category:        f.Category,
		Images:          images,
		InStock:         true,
		PostedBy:        actor,
		PostedDate:      c.now().UTC().Format(time.RFC3339),
		UpdatedBy:       Unset,
		UpdatedDate:     Unset,
	}

	id, err := c.backend.CreateProduct(ctx, p)
	if err != nil {
		c.log.Error("create product failed", "name", f.Name, "error", err)
		c.notifier.Notify(notify.LevelError, NoticeProductFailed)
		return "", err
	}
	c.notifier.Notify(notify.LevelSuccess, NoticeProductAdded)
	c.log.Info("product created", "product_id", id, "posted_by", actor)
	return id, nil
}

// UpdateProduct replaces the product's images only when new files are given;
// otherwise the stored images are kept.
func (c *Console) UpdateProduct(ctx context.Context, actor, id string, f ProductForm) error {
	if err := f.validate(); err != nil {
		return err
	}
	current, err := c.backend.AdminProduct(ctx, id)
	if err != nil {
		return err
	}

	images := current.Images
	if f.hasImages() {
		images = c.uploadImages(ctx, f.Images)
	}

	p := domain.Product{
		ID:              current.ID,
		Name:            f.Name,
		Description:     f.Description,
		Price:           f.Price,
		Discount:        f.Discount,
		DiscountedPrice: pricing.DiscountedPrice(f.Price, f.Discount),
		Category:        f.Category,
		Images:          images,
		InStock:         f.InStock,
		PostedBy:        current.PostedBy,
		PostedDate:      current.PostedDate,
		UpdatedBy:       actor,
		UpdatedDate:     c.now().UTC().Format(time.RFC3339),
	}

	if err := c.backend.UpdateProduct(ctx, id, p); err != nil {
		c.log.Error("update product failed", "product_id", id, "error", err)
		c.notifier.Notify(notify.LevelError, "Failed to update product")
		return err
	}
	c.notifier.Notify(notify.LevelSuccess, NoticeProductUpdated)
	return nil
}

func (c *Console) DeleteProduct(ctx context.Context, id string) error {
	if err := c.backend.DeleteProduct(ctx, id); err != nil {
		c.log.Error("delete product failed", "product_id", id, "error", err)
		c.notifier.Notify(notify.LevelError, "Failed to delete.")
		return err
	}
	c.notifier.Notify(notify.LevelSuccess, NoticeProductDeleted)
	return nil
}

// uploadImages keeps the URLs of the uploads that succeeded, in form order.
func (c *Console) uploadImages(ctx context.Context, files [3]*Image) []string {
	urls := make([]string, 0, len(files))
	for _, img := range files {
		if img == nil {
			continue
		}
		url, err := c.uploader.Upload(ctx, img.Name, img.ContentType, img.Body)
		if err != nil {
			c.log.Warn("image upload failed", "file", img.Name, "error", err)
			c.notifier.Notify(notify.LevelError, NoticeUploadFailed)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
