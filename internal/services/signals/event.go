package signals

import (
	"context"

	"RetailPulse/internal/domain/models"
	domsvc "RetailPulse/internal/domain/service"
	applogger "RetailPulse/pkg/logger"
)

const eventWeight = 0.1

// EventAdjuster maps scheduled local events (festivals, promotions,
// closures) into a demand adjustment proportional to event count and
// per-event impact.
type EventAdjuster struct {
	provider domsvc.EventSignalProvider
	l        *applogger.Logger
}

func NewEventAdjuster(provider domsvc.EventSignalProvider, l *applogger.Logger) *EventAdjuster {
	return &EventAdjuster{provider: provider, l: l}
}

func (a *EventAdjuster) Source() models.AdjustmentSource { return models.SourceEvent }

func (a *EventAdjuster) Adjust(ctx context.Context, productID, _ string) (models.SignalAdjustment, error) {
	zero := models.SignalAdjustment{Source: models.SourceEvent, Value: 0}
	r, ok, err := a.provider.Events(ctx, productID)
	if err != nil {
		if a.l != nil {
			a.l.Warn("event signal lookup failed, using zero adjustment",
				applogger.String("product", productID), applogger.Error(err))
		}
		return zero, nil
	}
	if !ok || r.Count <= 0 {
		return zero, nil
	}

	impact := clampRange(r.Impact, -0.3, 0.3)
	score := float64(r.Count) * impact * eventWeight
	return models.SignalAdjustment{
		Source: models.SourceEvent,
		Value:  clampRange(score, -1, 1),
	}, nil
}

var _ domsvc.SignalAdjuster = (*EventAdjuster)(nil)
