package signals

import (
	"context"
	"math"

	"RetailPulse/internal/domain/models"
	domsvc "RetailPulse/internal/domain/service"
	applogger "RetailPulse/pkg/logger"
)

const (
	socialWeight    = 0.2
	mentionsBase    = 1000.0
	sentimentWeight = 0.3
	trendingWeight  = 0.4
	volumeWeight    = 0.3
)

// SocialAdjuster maps social chatter into a demand adjustment. Sentiment,
// trending score and mention volume are blended and scaled by a fixed
// weight so social buzz alone can move the forecast by at most 20%.
type SocialAdjuster struct {
	provider domsvc.SocialSignalProvider
	l        *applogger.Logger
}

func NewSocialAdjuster(provider domsvc.SocialSignalProvider, l *applogger.Logger) *SocialAdjuster {
	return &SocialAdjuster{provider: provider, l: l}
}

func (a *SocialAdjuster) Source() models.AdjustmentSource { return models.SourceSocial }

func (a *SocialAdjuster) Adjust(ctx context.Context, productID, _ string) (models.SignalAdjustment, error) {
	zero := models.SignalAdjustment{Source: models.SourceSocial, Value: 0}
	r, ok, err := a.provider.Social(ctx, productID)
	if err != nil {
		if a.l != nil {
			a.l.Warn("social signal lookup failed, using zero adjustment",
				applogger.String("product", productID), applogger.Error(err))
		}
		return zero, nil
	}
	if !ok {
		return zero, nil
	}

	sentiment := clampRange(r.Sentiment, -1, 1)
	trending := clampRange(r.Trending, 0, 1)
	volume := math.Min(float64(r.Mentions)/mentionsBase, 1)
	if r.Mentions < 0 {
		volume = 0
	}

	score := sentiment*sentimentWeight + trending*trendingWeight + volume*volumeWeight
	return models.SignalAdjustment{
		Source: models.SourceSocial,
		Value:  clampRange(score*socialWeight, -1, 1),
	}, nil
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ domsvc.SignalAdjuster = (*SocialAdjuster)(nil)
