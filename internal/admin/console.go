package admin

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/mrirakib04/sks-web/internal/upload"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal order status transition")
	ErrNotPayable        = errors.New("order cannot be marked as paid")
	ErrNotDeletable      = errors.New("order cannot be deleted")
	ErrImageRequired     = errors.New("image 1 is required")
	ErrNoImages          = errors.New("no image was uploaded")
	ErrInvalidProduct    = errors.New("invalid product")
)

const (
	NoticeStatusFailed   = "Failed to update order status"
	NoticeMarkedPaid     = "Payment marked as PAID"
	NoticeMarkPaidFailed = "Failed to mark as paid"
	NoticeOrderDeleted   = "Order deleted successfully"
	NoticeDeleteFailed   = "Failed to delete order"
	NoticeImageRequired  = "Image-1 is required!"
	NoticeUploadFailed   = "Image upload failed!"
	NoticeNoImages       = "Images didn't uploaded yet. Try again."
	NoticeProductAdded   = "Product added successfully!"
	NoticeProductFailed  = "Failed to add product!"
	NoticeProductUpdated = "Product updated successfully!"
	NoticeProductDeleted = "Product has been deleted."
	NoticeCategoryAdded  = "Category added successfully!"
	NoticeBannerAdded    = "Banner uploaded successfully!"

	// Unset is what the backend stores for "not touched yet" audit fields.
	Unset = "none"
)

type Backend interface {
	AdminOrders(ctx context.Context) ([]domain.Order, error)
	PatchOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
	PatchPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error
	DeleteOrder(ctx context.Context, id string) error
	OrderStats(ctx context.Context) ([]domain.OrderDayStat, error)

	AdminProducts(ctx context.Context) ([]domain.Product, error)
	AdminProduct(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (string, error)
	UpdateProduct(ctx context.Context, id string, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	Categories(ctx context.Context) ([]domain.Category, error)
	Banners(ctx context.Context) ([]domain.Banner, error)
	CreateCategory(ctx context.Context, cat domain.Category) (string, error)
	UpdateCategory(ctx context.Context, id string, cat domain.Category) error
	CreateBanner(ctx context.Context, b domain.Banner) (string, error)
	UpdateBanner(ctx context.Context, id string, b domain.Banner) error
	DeleteSetting(ctx context.Context, id string) error

	Customers(ctx context.Context) ([]domain.User, error)
}

// Image is one file from the admin forms.
type Image struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Console carries out staff actions. Every write names the acting staff
// member's email, which the backend records as postedBy/updatedBy.
type Console struct {
	backend  Backend
	uploader upload.Uploader
	notifier notify.Notifier
	now      func() time.Time
	log      *slog.Logger
}

func NewConsole(b Backend, uploader upload.Uploader, notifier notify.Notifier, log *slog.Logger) *Console {
	if uploader == nil {
		uploader = upload.Disabled{}
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Console{
		backend:  b,
		uploader: uploader,
		notifier: notifier,
		now:      time.Now,
		log:      log.With("component", "admin"),
	}
}

// OrderFilter narrows the order table. Zero values match everything.
type OrderFilter struct {
	Method domain.PaymentMethod
	Status string
	Latest bool
}

func (c *Console) Orders(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	orders, err := c.backend.AdminOrders(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if f.Method != 0 && o.Method != f.Method {
			continue
		}
		if f.Status != "" && !strings.EqualFold(string(o.OrderStatus), f.Status) {
			continue
		}
		out = append(out, o)
	}

	if f.Latest {
		slices.SortStableFunc(out, func(a, b domain.Order) int {
			return cmp.Compare(b.CreatedAt, a.CreatedAt)
		})
	}
	return out, nil
}

func (c *Console) order(ctx context.Context, id string) (domain.Order, error) {
	orders, err := c.backend.AdminOrders(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

// CanUpdateStatus reports whether an order may move to status. A payment the
// gateway settled can no longer be rejected.
func CanUpdateStatus(o domain.Order, to domain.OrderStatus) bool {
	if !o.OrderStatus.CanTransitionTo(to) {
		return false
	}
	if to == domain.OrderStatusRejected && o.PaymentInfo.Status == domain.PaymentStatusValid {
		return false
	}
	return true
}

// CanMarkPaid: only delivered cash-on-delivery orders still awaiting payment.
func CanMarkPaid(o domain.Order) bool {
	return o.OrderStatus == domain.OrderStatusDelivered &&
		o.PaymentStatus == domain.PaymentStatusPending &&
		o.Method == domain.PaymentCOD
}

func CanDelete(o domain.Order) bool {
	return o.OrderStatus == domain.OrderStatusRejected && o.PaymentInfo.Status != domain.PaymentStatusValid
}

func (c *Console) UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) error {
	o, err := c.order(ctx, id)
	if err != nil {
		return err
	}
	if !CanUpdateStatus(o, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.OrderStatus, to)
	}

	if err := c.backend.PatchOrderStatus(ctx, id, to); err != nil {
		c.log.Error("update order status failed", "order_id", id, "to", to, "error", err)
		c.notifier.Notify(notify.LevelError, NoticeStatusFailed)
		return err
	}
	c.notifier.Notify(notify.LevelSuccess, "Order marked as "+string(to))
	c.log.Info("order status updated", "order_id", id, "from", o.OrderStatus, "to", to)
	return nil
}

func (c *Console) MarkPaid(ctx context.Context, id string) error {
	o, err := c.order(ctx, id)
	if err != nil {
		return err
	}
	if !CanMarkPaid(o) {
		return fmt.Errorf("%w: %s", ErrNotPayable, id)
	}

	if err := c.backend.PatchPaymentStatus(ctx, id, domain.PaymentStatusValid); err != nil {
		c.log.Error("mark paid failed", "order_id", id, "error", err)
		c.notifier.Notify(notify.LevelError, NoticeMarkPaidFailed)
		return err
	}
	c.notifier.Notify(notify.LevelSuccess, NoticeMarkedPaid)
	return nil
}

func (c *Console) DeleteOrder(ctx context.Context, id string) error {
	o, err := c.order(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(o) {
		return fmt.Errorf("%w: %s", ErrNotDeletable, id)
	}

	if err := c.backend.DeleteOrder(ctx, id); err != nil {
		c.log.Error("delete order failed", "order_id", id, "error", err)
		c.notifier.Notify(notify.LevelError, NoticeDeleteFailed)
		return err
	}
	c.notifier.Notify(notify.LevelSuccess, NoticeOrderDeleted)
	return nil
}

func (c *Console) Stats(ctx context.Context) ([]domain.OrderDayStat, error) {
	return c.backend.OrderStats(ctx)
}

func (c *Console) Customers(ctx context.Context) ([]domain.User, error) {
	return c.backend.Customers(ctx)
}
