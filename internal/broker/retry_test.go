package broker

import (
	"errors"
	"testing"
)

type flakyAccountProvider struct {
	failures int
	calls    int
}

func (f *flakyAccountProvider) GetAccount() (*Account, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient network error")
	}
	return &Account{PortfolioValue: 10000}, nil
}

func TestGetAccountWithRetry_RecoversWithinBudget(t *testing.T) {
	p := &flakyAccountProvider{failures: 2}
	acct, err := GetAccountWithRetry(p, 3, 0)
	if err != nil {
		t.Fatalf("expected recovery within 3 attempts: %v", err)
	}
	if acct.PortfolioValue != 10000 {
		t.Errorf("unexpected account: %+v", acct)
	}
	if p.calls != 3 {
		t.Errorf("expected 3 calls, got %d", p.calls)
	}
}

func TestGetAccountWithRetry_Exhausted(t *testing.T) {
	p := &flakyAccountProvider{failures: 10}
	if _, err := GetAccountWithRetry(p, 3, 0); err == nil {
		t.Fatal("expected an error after exhausting all attempts")
	}
	if p.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", p.calls)
	}
}
