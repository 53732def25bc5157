package twilio

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultBroadcastRate is the outbound pace of a broadcast, in messages
// per second.
const DefaultBroadcastRate = 1

// BroadcastResult lists per-number outcomes of a broadcast.
type BroadcastResult struct {
	Success []string `json:"success"`
	Failed  []string `json:"failed"`
	Total   int      `json:"total"`
}

// Broadcaster sends one message to many numbers at a steady pace.
type Broadcaster struct {
	sender *Sender
	limit  *rate.Limiter
}

// NewBroadcaster paces sender at perSecond messages per second;
// perSecond <= 0 means DefaultBroadcastRate.
func NewBroadcaster(sender *Sender, perSecond float64) *Broadcaster {
	if perSecond <= 0 {
		perSecond = DefaultBroadcastRate
	}
	return &Broadcaster{sender: sender, limit: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Broadcast sends message to every number. Invalid numbers fail without a
// send. It stops early, marking the rest failed, when ctx is done.
func (b *Broadcaster) Broadcast(ctx context.Context, numbers []string, message string) BroadcastResult {
	res := BroadcastResult{Success: []string{}, Failed: []string{}, Total: len(numbers)}
	for i, n := range numbers {
		if !ValidPhone(n) {
			res.Failed = append(res.Failed, n)
			continue
		}
		if err := b.limit.Wait(ctx); err != nil {
			res.Failed = append(res.Failed, numbers[i:]...)
			return res
		}
		if err := b.sender.Send(ctx, n, message); err != nil {
			res.Failed = append(res.Failed, n)
			continue
		}
		res.Success = append(res.Success, n)
	}
	return res
}
