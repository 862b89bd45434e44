package visible

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates every way building or reading a visible set can fail. All
// kinds describe caller misuse, so none of them are worth retrying within a frame.
type ErrorKind int

const (
	// KindBuilderInvalid is returned by any mutating or finalizing call on an
	// assembler that has already been finalized.
	KindBuilderInvalid ErrorKind = iota + 1

	// KindInstanceAlreadyVisible is returned when an instance is added a second time
	// to the unlit batch or to any light group of the same opaque set.
	KindInstanceAlreadyVisible

	// KindInstanceKindMismatch is returned when an instance's kind is not accepted by
	// the operation, e.g. a translucent instance added as an opaque or a refractive
	// instance added as lit.
	KindInstanceKindMismatch

	// KindLightGroupAlreadyAdded is returned when a light group name is reused.
	KindLightGroupAlreadyAdded

	// KindLightGroupLacksInstances is returned when a light group is finalized with
	// lights but no instances under the strict policy.
	KindLightGroupLacksInstances

	// KindLightGroupLacksLights is returned when a light group is finalized without lights.
	KindLightGroupLacksLights

	// KindLightGroupNonexistent is returned when a snapshot is asked for an unknown group.
	KindLightGroupNonexistent

	// KindMaterialNonexistent is returned when a snapshot is asked for an unknown signature.
	KindMaterialNonexistent

	// KindLightNonexistent is returned when a snapshot is asked for an unknown light.
	KindLightNonexistent
)

var kindNames = map[ErrorKind]string{
	KindBuilderInvalid:           "builder invalid",
	KindInstanceAlreadyVisible:   "instance already visible",
	KindInstanceKindMismatch:     "instance kind mismatch",
	KindLightGroupAlreadyAdded:   "light group already added",
	KindLightGroupLacksInstances: "light group lacks instances",
	KindLightGroupLacksLights:    "light group lacks lights",
	KindLightGroupNonexistent:    "light group nonexistent",
	KindMaterialNonexistent:      "material nonexistent",
	KindLightNonexistent:         "light nonexistent",
}

// String returns the human-readable name of the kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the error type returned by every operation in this package.
//
// Errors are matched by kind: errors.Is(err, ErrMaterialNonexistent) holds for any
// *Error of KindMaterialNonexistent, wherever it sits in a wrap chain.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Op names the operation that failed, e.g. "LightGroup.AddInstance".
	Op string
	// Detail carries the offending key or identifier.
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "visible: "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	msg += e.Kind.String()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel errors for use with errors.Is.
var (
	ErrBuilderInvalid           = &Error{Kind: KindBuilderInvalid}
	ErrInstanceAlreadyVisible   = &Error{Kind: KindInstanceAlreadyVisible}
	ErrInstanceKindMismatch     = &Error{Kind: KindInstanceKindMismatch}
	ErrLightGroupAlreadyAdded   = &Error{Kind: KindLightGroupAlreadyAdded}
	ErrLightGroupLacksInstances = &Error{Kind: KindLightGroupLacksInstances}
	ErrLightGroupLacksLights    = &Error{Kind: KindLightGroupLacksLights}
	ErrLightGroupNonexistent    = &Error{Kind: KindLightGroupNonexistent}
	ErrMaterialNonexistent      = &Error{Kind: KindMaterialNonexistent}
	ErrLightNonexistent         = &Error{Kind: KindLightNonexistent}
)

// KindOf extracts the ErrorKind from err.
//
// Parameters:
//   - err: any error, possibly wrapped
//
// Returns:
//   - ErrorKind: the kind of the first *Error in the chain
//   - bool: false if err carries no *Error
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func newError(kind ErrorKind, op string, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Op:     op,
		Detail: fmt.Sprintf(format, args...),
	}
}
