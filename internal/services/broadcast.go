package services

import (
	"sync"

	"gatherly/internal/domain"
)

// broadcast delivers one notification per recipient concurrently. Each
// delivery is an independent, best-effort unit of work: one recipient's
// failure affects neither the others nor the operation that triggered
// the fan-out. The report carries per-recipient outcomes.
func broadcast(recipients []*domain.Recipient, send func(*domain.Recipient) error) *domain.DeliveryReport {
	report := &domain.DeliveryReport{Attempted: len(recipients)}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, rec := range recipients {
		wg.Add(1)
		go func(rec *domain.Recipient) {
			defer wg.Done()
			err := send(rec)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, rec.Email)
				return
			}
			report.Delivered++
		}(rec)
	}
	wg.Wait()
	return report
}
