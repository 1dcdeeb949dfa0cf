// Package quota estimates how much of the storage budget is in use.
package quota

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
)

type Usage struct {
	Used  int64
	Quota int64
}

// Fraction is Used/Quota. A zero quota counts as full.
func (u Usage) Fraction() float64 {
	if u.Quota <= 0 {
		return 1
	}
	return float64(u.Used) / float64(u.Quota)
}

func (u Usage) String() string {
	return fmt.Sprintf("%s of %s (%.1f%%)",
		humanize.IBytes(uint64(max(u.Used, 0))), humanize.IBytes(uint64(max(u.Quota, 0))), u.Fraction()*100)
}

type Estimator interface {
	Estimate(ctx context.Context) (Usage, error)
}

// UsageFunc reports bytes currently stored.
type UsageFunc func(ctx context.Context) (int64, error)

// Budget measures usage against a fixed byte budget.
type Budget struct {
	quota int64
	used  UsageFunc
}

func NewBudget(quotaBytes int64, used UsageFunc) *Budget {
	return &Budget{quota: quotaBytes, used: used}
}

func (b *Budget) Estimate(ctx context.Context) (Usage, error) {
	used, err := b.used(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to measure storage usage: %w", err)
	}
	return Usage{Used: used, Quota: b.quota}, nil
}

// Check fails with a *domain.QuotaError when usage is at or above threshold.
func Check(ctx context.Context, est Estimator, threshold float64) (Usage, error) {
	u, err := est.Estimate(ctx)
	if err != nil {
		return Usage{}, err
	}
	if f := u.Fraction(); f >= threshold {
		return u, &domain.QuotaError{UsedPercent: f * 100}
	}
	return u, nil
}
