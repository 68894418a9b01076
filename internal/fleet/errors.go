package fleet

import "errors"

// Kind classifies errors for transport mapping.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInfeasible
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInfeasible:
		return "infeasible"
	case KindIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// Error is a sentinel domain error. Wrap it with fmt.Errorf and %w to add
// context; errors.Is and KindOf still work on the result.
type Error struct {
	Kind Kind
	Code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, msg: msg}
}

// Domain errors.
var (
	ErrValidation    = newError(KindValidation, "Validation", "invalid request")
	ErrInvalidShape  = newError(KindValidation, "InvalidShape", "invalid obstacle shape")
	ErrInvalidStatus = newError(KindValidation, "InvalidStatus", "invalid flight status")

	ErrDroneNotFound    = newError(KindNotFound, "DroneNotFound", "drone not found")
	ErrDeliveryNotFound = newError(KindNotFound, "DeliveryNotFound", "delivery not found")
	ErrFlightNotFound   = newError(KindNotFound, "FlightNotFound", "flight not found")
	ErrObstacleNotFound = newError(KindNotFound, "ObstacleNotFound", "obstacle not found")

	ErrDuplicateID        = newError(KindConflict, "DuplicateId", "duplicate id")
	ErrDeliveryNotPending = newError(KindConflict, "DeliveryNotPending", "delivery is not pending")
	ErrHasActiveFlight    = newError(KindConflict, "HasActiveFlight", "delivery has an active flight")
	ErrAlreadyCancelled   = newError(KindConflict, "AlreadyCancelled", "delivery already cancelled")
	ErrInvalidTransition  = newError(KindConflict, "InvalidTransition", "invalid flight transition")

	ErrNoCarrierCapacity     = newError(KindInfeasible, "NoCarrierCapacity", "no drone can carry this weight")
	ErrNoFeasibleDrone       = newError(KindInfeasible, "NoFeasibleDrone", "no drone can fly this mission")
	ErrRouteBlocked          = newError(KindInfeasible, "RouteBlocked", "route crosses an obstacle")
	ErrNoSchedulableDelivery = newError(KindInfeasible, "NoSchedulableDelivery", "no pending delivery can be scheduled")

	ErrIntegrity = newError(KindIntegrity, "Integrity", "registry integrity violated")
)

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the stable code of the first domain error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
