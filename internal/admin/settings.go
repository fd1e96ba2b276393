package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
)

var ErrCategoryName = errors.New("category name is required")

func (c *Console) Categories(ctx context.Context) ([]domain.Category, error) {
	return c.backend.Categories(ctx)
}

func (c *Console) Banners(ctx context.Context) ([]domain.Banner, error) {
	return c.backend.Banners(ctx)
}

func (c *Console) CreateCategory(ctx context.Context, actor string, index int, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrCategoryName
	}
	id, err := c.backend.CreateCategory(ctx, domain.Category{
		Index:      index,
		Name:       name,
		SettingFor: domain.SettingCategory,
		PostedBy:   actor,
		ModifiedBy: Unset,
	})
	if err != nil {
		c.notifier.Notify(notify.LevelError, "Failed to add category")
		return "", err
	}
	c.notifier.Notify(notify.LevelSuccess, NoticeCategoryAdded)
	return id, nil
}

func (c *Console) UpdateCategory(ctx context.Context, actor, id string, index int, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrCategoryName
	}
	err := c.backend.UpdateCategory(ctx, id, domain.Category{
		Index:      index,
		Name:       name,
		ModifiedBy: actor,
	})
	if err != nil {
		c.notifier.Notify(notify.LevelError, "Update failed")
		return err
	}
	c.notifier.Notify(notify.LevelSuccess, "Category updated successfully")
	return nil
}

// CreateBanner uploads the image, then records it. Nothing is stored when the
// upload fails.
func (c *Console) CreateBanner(ctx context.Context, actor string, index int, img Image) (string, error) {
	url, err := c.uploader.Upload(ctx, img.Name, img.ContentType, img.Body)
	if err != nil {
		c.log.Warn("banner upload failed", "file", img.Name, "error", err)
		c.notifier.Notify(notify.LevelError, "Something went wrong during upload!")
		return "", err
	}

	id, err := c.backend.CreateBanner(ctx, domain.Banner{
		Index:      index,
		Image:      url,
		SettingFor: domain.SettingBanner,
		PostedBy:   actor,
		ModifiedBy: Unset,
	})
	if err != nil {
		c.notifier.Notify(notify.LevelError, "Failed to upload banner")
		return "", err
	}
	c.notifier.Notify(notify.LevelSuccess, NoticeBannerAdded)
	return id, nil
}

// UpdateBanner changes the index and, when img is given, the image.
func (c *Console) UpdateBanner(ctx context.Context, actor, id string, index int, current string, img *Image) error {
	image := current
	if img != nil {
		url, err := c.uploader.Upload(ctx, img.Name, img.ContentType, img.Body)
		if err != nil {
			c.notifier.Notify(notify.LevelError, "Something went wrong during upload!")
			return err
		}
		image = url
	}

	err := c.backend.UpdateBanner(ctx, id, domain.Banner{
		Index:      index,
		Image:      image,
		ModifiedBy: actor,
	})
	if err != nil {
		c.notifier.Notify(notify.LevelError, "Update failed")
		return err
	}
	c.notifier.Notify(notify.LevelSuccess, "Banner updated successfully")
	return nil
}

// DeleteSetting removes a category or a banner.
func (c *Console) DeleteSetting(ctx context.Context, id string) error {
	if err := c.backend.DeleteSetting(ctx, id); err != nil {
		c.notifier.Notify(notify.LevelError, "Delete failed")
		return err
	}
	c.notifier.Notify(notify.LevelSuccess, "Deleted successfully")
	return nil
}
