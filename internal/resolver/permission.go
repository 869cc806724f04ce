package resolver

// PermissionState mirrors the authorization states a location platform reports.
type PermissionState int

const (
	PermissionNotDetermined PermissionState = iota
	PermissionRestricted
	PermissionDenied
	PermissionAuthorizedAlways
	PermissionAuthorizedWhenInUse
	// PermissionServicesDisabled means location services are off for the whole device.
	PermissionServicesDisabled
)

func (p PermissionState) String() string {
	switch p {
	case PermissionNotDetermined:
		return "not_determined"
	case PermissionRestricted:
		return "restricted"
	case PermissionDenied:
		return "denied"
	case PermissionAuthorizedAlways:
		return "authorized_always"
	case PermissionAuthorizedWhenInUse:
		return "authorized_when_in_use"
	case PermissionServicesDisabled:
		return "services_disabled"
	default:
		return "unknown"
	}
}

// Action is what the resolver does next given a permission state.
type Action int

const (
	ActionProceed Action = iota
	ActionRequest
	ActionFail
)

// Decision is the outcome of DecidePermission. Err is set only for ActionFail.
type Decision struct {
	Action Action
	Err    *ResolutionError
}

// DecidePermission collapses platform permission states into resolver actions.
func DecidePermission(state PermissionState) Decision {
	switch state {
	case PermissionAuthorizedAlways, PermissionAuthorizedWhenInUse:
		return Decision{Action: ActionProceed}
	case PermissionNotDetermined:
		return Decision{Action: ActionRequest}
	case PermissionServicesDisabled:
		return Decision{Action: ActionFail, Err: newError(KindLocationUnavailable, nil)}
	default:
		return Decision{Action: ActionFail, Err: newError(KindPermissionDenied, nil)}
	}
}

// decideAfterRequest is DecidePermission for the platform's answer to a
// prompt. An answer that is still undetermined counts as a refusal.
func decideAfterRequest(state PermissionState) Decision {
	d := DecidePermission(state)
	if d.Action == ActionRequest {
		return Decision{Action: ActionFail, Err: newError(KindPermissionDenied, nil)}
	}
	return d
}
