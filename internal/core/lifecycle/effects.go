package lifecycle

import "CivicPulse/internal/core/domain"

// EffectKind says what the caller must do with an Effect.
type EffectKind int

const (
	EffectCreateReport EffectKind = iota + 1
	EffectSaveReport
	EffectEmitNotification
)

func (k EffectKind) String() string {
	switch k {
	case EffectCreateReport:
		return "create_report"
	case EffectSaveReport:
		return "save_report"
	case EffectEmitNotification:
		return "emit_notification"
	}
	return "unknown"
}

// Effect is one write requested by a transition. Only the field matching
// Kind is populated.
type Effect struct {
	Kind         EffectKind
	Report       domain.Report
	Notification domain.NotificationRequest
}

// Outcome is the result of a successful transition: the new report value
// and the ordered effects that must be applied atomically.
type Outcome struct {
	Transition Transition
	Report     domain.Report
	Effects    []Effect
}

// Notifications returns the notification requests among the effects, in order.
func (o Outcome) Notifications() []domain.NotificationRequest {
	var out []domain.NotificationRequest
	for _, eff := range o.Effects {
		if eff.Kind == EffectEmitNotification {
			out = append(out, eff.Notification)
		}
	}
	return out
}

func createReport(r domain.Report) Effect {
	return Effect{Kind: EffectCreateReport, Report: r}
}

func saveReport(r domain.Report) Effect {
	return Effect{Kind: EffectSaveReport, Report: r}
}

func emit(n domain.NotificationRequest) Effect {
	return Effect{Kind: EffectEmitNotification, Notification: n}
}
