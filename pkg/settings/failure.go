package settings

import "fmt"

// FailureKind classifies a settings resolution failure
type FailureKind string

const (
	MissingRequiredParameter   FailureKind = "MissingRequiredParameter"
	DeactivatedLocally         FailureKind = "DeactivatedLocally"
	DeactivatedCentrally       FailureKind = "DeactivatedCentrally"
	ServiceUnreachable         FailureKind = "ServiceUnreachable"
	MalformedLocalSettingsFile FailureKind = "MalformedLocalSettingsFile"
	DirectoryValidationFailure FailureKind = "DirectoryValidationFailure"
)

// Stage names the resolution step a failure came from
type Stage string

const (
	StageLocal    Stage = "local"
	StageOffline  Stage = "offline"
	StageControl  Stage = "control"
	StageGroup    Stage = "settings-group"
	StageBroker   Stage = "broker"
	StageActivity Stage = "activity"
)

// Failure is the structured result of a failed or stopped resolution
type Failure struct {
	Kind    FailureKind
	Stage   Stage
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", f.Kind, f.Stage, f.Message, f.Err)
	}
	return fmt.Sprintf("%s (%s): %s", f.Kind, f.Stage, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Fatal reports whether the failure must stop the manager. Deactivation is a
// normal stop signal, not an error.
func (f *Failure) Fatal() bool {
	return f.Kind != DeactivatedLocally && f.Kind != DeactivatedCentrally
}

func newFailure(kind FailureKind, stage Stage, err error, format string, args ...interface{}) *Failure {
	return &Failure{
		Kind:    kind,
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
