package signals

import (
	"context"

	"RetailPulse/internal/domain/models"
	domsvc "RetailPulse/internal/domain/service"
	applogger "RetailPulse/pkg/logger"
)

const (
	weatherWeight = 0.15
	comfortTemp   = 50.0 // Fahrenheit pivot: demand neutral at 50F
	comfortHum    = 50.0
)

// WeatherAdjuster maps store-level weather into a demand adjustment.
// Warm, humid, dry days push demand up; precipitation pushes it down.
type WeatherAdjuster struct {
	provider domsvc.WeatherSignalProvider
	l        *applogger.Logger
}

func NewWeatherAdjuster(provider domsvc.WeatherSignalProvider, l *applogger.Logger) *WeatherAdjuster {
	return &WeatherAdjuster{provider: provider, l: l}
}

func (a *WeatherAdjuster) Source() models.AdjustmentSource { return models.SourceWeather }

func (a *WeatherAdjuster) Adjust(ctx context.Context, _, storeID string) (models.SignalAdjustment, error) {
	zero := models.SignalAdjustment{Source: models.SourceWeather, Value: 0}
	r, ok, err := a.provider.Weather(ctx, storeID)
	if err != nil {
		if a.l != nil {
			a.l.Warn("weather signal lookup failed, using zero adjustment",
				applogger.String("store", storeID), applogger.Error(err))
		}
		return zero, nil
	}
	if !ok {
		return zero, nil
	}

	temp := clampRange(r.Temperature, -60, 150)
	hum := clampRange(r.Humidity, 0, 100)
	precip := r.Precipitation
	if precip < 0 {
		precip = 0
	}

	tempEffect := (temp - comfortTemp) / 100
	humEffect := (hum - comfortHum) / 100
	precipEffect := -precip / 10

	score := (tempEffect + humEffect + precipEffect) / 3
	return models.SignalAdjustment{
		Source: models.SourceWeather,
		Value:  clampRange(score*weatherWeight, -1, 1),
	}, nil
}

var _ domsvc.SignalAdjuster = (*WeatherAdjuster)(nil)
