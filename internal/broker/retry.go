package broker

import (
	"fmt"
	"log"
	"time"
)

// GetAccountWithRetry fetches the account under a bounded fixed-delay
// retry policy. Exhausting every attempt is fatal to the session: no
// sizing or day-trade decision can be trusted without an account snapshot.
func GetAccountWithRetry(p AccountProvider, maxAttempts int, delay time.Duration) (*Account, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		acct, err := p.GetAccount()
		if err == nil {
			return acct, nil
		}
		lastErr = err
		log.Printf("[WARN] get account failed (attempt %d/%d): %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(delay)
		}
	}
	return nil, fmt.Errorf("account unavailable after %d attempts: %w", maxAttempts, lastErr)
}
