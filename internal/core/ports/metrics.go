package ports

// TransitionMetrics records report lifecycle activity.
type TransitionMetrics interface {
	// ObserveTransition counts one attempt. outcome is "ok" or an error kind.
	ObserveTransition(transition string, outcome string)

	// AddCivicCoins counts coins granted on verification.
	AddCivicCoins(n int)
}
