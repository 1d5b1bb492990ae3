package hold

import "time"

// Reason explains why a hold was released.
type Reason string

const (
	ReasonBuyerCancelled Reason = "buyer-cancelled"
	ReasonExpiredTimer   Reason = "expired-timer"
	ReasonAdminCleanup   Reason = "admin-cleanup"
	ReasonSystemSweep    Reason = "system-sweep"
	ReasonPaymentFailed  Reason = "payment-failed"
	ReasonCheckoutFailed Reason = "checkout-failed"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonBuyerCancelled, ReasonExpiredTimer, ReasonAdminCleanup,
		ReasonSystemSweep, ReasonPaymentFailed, ReasonCheckoutFailed:
		return true
	}

	return false
}

// ActorSystem marks automatic transitions.
const ActorSystem = "system"

// Policy holds the checkout timing rules.
type Policy struct {
	// BaseWindow is used when a checkout does not ask for a window.
	BaseWindow time.Duration
	// Extension is the default increment granted by Extend.
	Extension time.Duration
	// Ceiling bounds every checkout, measured from order creation.
	Ceiling time.Duration
	// TxAttempts bounds retries of transactions failing with ErrTransient.
	TxAttempts int
	// ReconcileBatch bounds how many listings one Reconcile call inspects.
	ReconcileBatch int
}

func DefaultPolicy() Policy {
	return Policy{
		BaseWindow:     10 * time.Minute,
		Extension:      5 * time.Minute,
		Ceiling:        15 * time.Minute,
		TxAttempts:     3,
		ReconcileBatch: 500,
	}
}

func (p Policy) window(requested time.Duration) time.Duration {
	w := requested
	if w <= 0 {
		w = p.BaseWindow
	}

	if w > p.Ceiling {
		w = p.Ceiling
	}

	return w
}

func (p Policy) increment(requested time.Duration) time.Duration {
	if requested <= 0 {
		return p.Extension
	}

	return requested
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.BaseWindow <= 0 {
		p.BaseWindow = d.BaseWindow
	}

	if p.Extension <= 0 {
		p.Extension = d.Extension
	}

	if p.Ceiling <= 0 {
		p.Ceiling = d.Ceiling
	}

	if p.TxAttempts <= 0 {
		p.TxAttempts = d.TxAttempts
	}

	if p.ReconcileBatch <= 0 {
		p.ReconcileBatch = d.ReconcileBatch
	}

	return p
}
