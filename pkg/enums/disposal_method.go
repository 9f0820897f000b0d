package enums

import "fmt"

// DisposalMethod maps to the disposal_method enum in Postgres.
type DisposalMethod string

const (
	DisposalMethodRecycle  DisposalMethod = "recycle"
	DisposalMethodCompost  DisposalMethod = "compost"
	DisposalMethodReuse    DisposalMethod = "reuse"
	DisposalMethodLandfill DisposalMethod = "landfill"
	DisposalMethodHazard   DisposalMethod = "hazardous_dropoff"
)

var validDisposalMethods = []DisposalMethod{
	DisposalMethodRecycle,
	DisposalMethodCompost,
	DisposalMethodReuse,
	DisposalMethodLandfill,
	DisposalMethodHazard,
}

// IsValid checks whether the given method matches the canonical enum.
func (d DisposalMethod) IsValid() bool {
	for _, candidate := range validDisposalMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisposalMethod converts raw strings into DisposalMethod.
func ParseDisposalMethod(value string) (DisposalMethod, error) {
	for _, candidate := range validDisposalMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid disposal method %q", value)
}
