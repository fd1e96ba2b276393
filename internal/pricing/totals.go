package pricing

import (
	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/shopspring/decimal"
)

// Policy is the two-tier delivery fee: the home region pays HomeFee, every
// other region pays OtherFee. Regions are compared exactly.
type Policy struct {
	HomeRegion string
	HomeFee    float64
	OtherFee   float64
}

func DefaultPolicy() Policy {
	return Policy{
		HomeRegion: "Dhaka",
		HomeFee:    70,
		OtherFee:   120,
	}
}

type Totals struct {
	Region      string  `json:"region"`
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	NetTotal    float64 `json:"net_total"`
}

// Subtotal sums discounted unit price times quantity over every line.
func Subtotal(c domain.Cart) float64 {
	sum := decimal.Zero
	for _, item := range c.Items {
		line := decimal.NewFromFloat(item.DiscountedUnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	return sum.InexactFloat64()
}

func (p Policy) DeliveryFee(region string) float64 {
	if region == p.HomeRegion {
		return p.HomeFee
	}
	return p.OtherFee
}

func (p Policy) Compute(c domain.Cart, region string) Totals {
	subtotal := Subtotal(c)
	fee := p.DeliveryFee(region)
	net := decimal.NewFromFloat(subtotal).Add(decimal.NewFromFloat(fee))
	return Totals{
		Region:      region,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		NetTotal:    net.InexactFloat64(),
	}
}

// DiscountedPrice is the admin console's rule: price minus discount percent,
// rounded to a whole taka.
func DiscountedPrice(price float64, discountPercent int) float64 {
	p := decimal.NewFromFloat(price)
	off := p.Mul(decimal.NewFromInt(int64(discountPercent))).Div(decimal.NewFromInt(100))
	return p.Sub(off).Round(0).InexactFloat64()
}
