package plugins

import "fmt"

// FailureKind classifies a plugin resolution failure
type FailureKind string

const (
	DescriptorNotFound        FailureKind = "DescriptorNotFound"
	AmbiguousOrMissingMapping FailureKind = "AmbiguousOrMissingMapping"
	PackageNotFound           FailureKind = "PackageNotFound"
	TypeLoadFailure           FailureKind = "TypeLoadFailure"
	InstantiationFailure      FailureKind = "InstantiationFailure"
	CapabilityMismatch        FailureKind = "CapabilityMismatch"
)

// Failure describes why a plugin could not be resolved. It is fatal to the
// current step only.
type Failure struct {
	Kind     FailureKind
	Category Category
	Tool     string
	Class    string
	Package  string
	Message  string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
