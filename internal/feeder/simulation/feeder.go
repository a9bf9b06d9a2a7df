package simulation

import (
	"math/rand/v2"
	"time"

	"catfeeder-server/internal/feeder/domain"
)

const (
	DefaultTriggerDistance = 10.0
	DefaultCooldown        = 5 * time.Second

	_maxDistance = 60.0
)

type FeederOpts struct {
	// TriggerDistance is how close, in centimeters, the cat must get to open the servo.
	TriggerDistance float64
	Cooldown        time.Duration
	Rand            *rand.Rand
}

func NewFeeder(opts FeederOpts) *Feeder {
	trigger := opts.TriggerDistance
	if trigger <= 0 {
		trigger = DefaultTriggerDistance
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	random := opts.Rand
	if random == nil {
		random = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}

	return &Feeder{
		trigger:  trigger,
		cooldown: cooldown,
		rand:     random,
		status:   domain.ServoStatusClosed,
		distance: _maxDistance / 2,
	}
}

// Feeder mimics the firmware: the servo opens when the ultrasonic sensor sees
// the cat within the trigger distance, then rests for the cooldown period.
type Feeder struct {
	trigger  float64
	cooldown time.Duration
	rand     *rand.Rand

	status        domain.ServoStatus
	distance      float64
	cooldownUntil time.Time
}

// Next produces the reading the device would send at now. The id is left to
// the database.
func (f *Feeder) Next(now time.Time) domain.SensorReading {
	f.distance = f.nextDistance()

	switch f.status {
	case domain.ServoStatusOpen:
		f.status = domain.ServoStatusCooldown
		f.cooldownUntil = now.Add(f.cooldown)
	case domain.ServoStatusCooldown:
		if !now.Before(f.cooldownUntil) {
			f.status = domain.ServoStatusClosed
		}
	default:
		if f.distance <= f.trigger {
			f.status = domain.ServoStatusOpen
		}
	}

	return domain.SensorReading{
		CreatedAt:   now,
		Distance:    f.distance,
		ServoStatus: f.status,
	}
}

// nextDistance drifts around the previous value with an occasional visit.
func (f *Feeder) nextDistance() float64 {
	if f.rand.Float64() < 0.15 {
		return round(2 + f.rand.Float64()*(f.trigger-2))
	}

	distance := f.distance + (f.rand.Float64()-0.5)*10
	if distance < f.trigger+1 {
		distance = f.trigger + 1 + f.rand.Float64()*5
	}
	if distance > _maxDistance {
		distance = _maxDistance
	}
	return round(distance)
}

func round(value float64) float64 {
	return float64(int(value*10+0.5)) / 10
}
