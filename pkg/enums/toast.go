package enums

import "fmt"

// ToastType classifies in-app toast messages.
type ToastType string

const (
	ToastTypeSuccess     ToastType = "success"
	ToastTypeInfo        ToastType = "info"
	ToastTypeWarning     ToastType = "warning"
	ToastTypeError       ToastType = "error"
	ToastTypeAchievement ToastType = "achievement"
	ToastTypeStreak      ToastType = "streak"
)

var validToastTypes = []ToastType{
	ToastTypeSuccess,
	ToastTypeInfo,
	ToastTypeWarning,
	ToastTypeError,
	ToastTypeAchievement,
	ToastTypeStreak,
}

// IsValid checks whether the given type matches the canonical enum.
func (t ToastType) IsValid() bool {
	for _, candidate := range validToastTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseToastType converts raw strings into ToastType.
func ParseToastType(value string) (ToastType, error) {
	for _, candidate := range validToastTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid toast type %q", value)
}
