package domain

import "strings"

// The payload is a tagged union keyed by the order type: each type has its
// own known field set instead of an open map. Unknown fields are rejected
// only where they would change line state on completion.

// PlanChangePayload carries the target plan; allowance fields are optional
// and applied to the line on completion when present.
type PlanChangePayload struct {
	PreviousPlan    string   `json:"previousPlan,omitempty"`
	NewPlan         string   `json:"newPlan"`
	MonthlyFee      *float64 `json:"monthlyFee,omitempty"`
	IncludedData    *int64   `json:"includedData,omitempty"`
	IncludedMinutes *int64   `json:"includedMinutes,omitempty"`
	IncludedSMS     *int64   `json:"includedSMS,omitempty"`
	PriceDifference *float64 `json:"priceDifference,omitempty"`
}

// ActivationPayload covers service_activation and package_activation. A
// non-empty PackageID marks the order for immediate fulfillment.
type ActivationPayload struct {
	PackageID   string  `json:"packageId,omitempty"`
	PackageName string  `json:"packageName,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Validity    string  `json:"validity,omitempty"`
}

type BudgetIncreasePayload struct {
	PreviousLimit *float64 `json:"previousLimit,omitempty"`
	NewLimit      float64  `json:"newLimit"`
	Reason        string   `json:"reason,omitempty"`
}

type ToggleServicePayload struct {
	Service string `json:"service"`
	Enabled bool   `json:"enabled"`
}

// ValidatePayload checks the variant the order type requires.
func ValidatePayload(t Type, payload map[string]any) error {
	switch t {
	case TypePlanChange:
		if stringField(payload, "newPlan") == "" {
			return ErrInvalidPayload
		}
	case TypeBudgetIncrease:
		limit, ok := numberField(payload, "newLimit")
		if !ok || limit < 0 {
			return ErrInvalidPayload
		}
	case TypeToggleService:
		if stringField(payload, "service") == "" {
			return ErrInvalidPayload
		}
	case TypeServiceActivation, TypePackageActivation, TypeLineActivation:
		// No required fields; packageId only selects immediate fulfillment.
	default:
		return ErrInvalidType
	}
	return nil
}

// ImmediateFulfillment reports whether the order completes synchronously on
// creation: a service/package activation carrying a package identifier.
func ImmediateFulfillment(t Type, payload map[string]any) bool {
	if t != TypeServiceActivation && t != TypePackageActivation {
		return false
	}
	return stringField(payload, "packageId") != ""
}

func stringField(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	value, _ := payload[key].(string)
	return strings.TrimSpace(value)
}

func numberField(payload map[string]any, key string) (float64, bool) {
	if payload == nil {
		return 0, false
	}
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
