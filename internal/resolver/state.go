package resolver

// Stage is a step of the resolution pipeline as seen by observers.
type Stage int

const (
	StageIdle Stage = iota
	StageRequestingPermission
	StageAcquiringLocation
	StageGeocoding
	StageSearching
	StageSuccess
	StageFailed
)

var stageNames = [...]string{
	StageIdle:                 "idle",
	StageRequestingPermission: "requesting_permission",
	StageAcquiringLocation:    "acquiring_location",
	StageGeocoding:            "geocoding",
	StageSearching:            "searching",
	StageSuccess:              "success",
	StageFailed:               "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// ResolutionState is the observable progress of a resolver. Reason is set
// only when Stage is StageFailed.
type ResolutionState struct {
	Stage  Stage
	Reason ErrorKind
}

// Terminal reports whether the state ends a resolution.
func (s ResolutionState) Terminal() bool {
	return s.Stage == StageSuccess || s.Stage == StageFailed
}

func (s ResolutionState) String() string {
	if s.Stage == StageFailed && s.Reason != "" {
		return "failed(" + string(s.Reason) + ")"
	}
	return s.Stage.String()
}
