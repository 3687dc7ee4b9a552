package core

import (
	"errors"
)

var (
	// ErrRedundancyIncompatible signals a conversion or merge between
	// redundancy shapes that have no common generalization, such as
	// parity against swapchain, or any narrowing conversion.
	ErrRedundancyIncompatible = errors.New("incompatible redundancy")
	// ErrLengthMismatch signals swap sets of unequal length being merged.
	ErrLengthMismatch = errors.New("swap sets must be of equal length")
	// ErrBindingConflict signals two shader stages declaring the same
	// binding slot and frequency with differing type or count.
	ErrBindingConflict = errors.New("failed to accumulate bindings")
	// ErrMissingTierLayout signals a descriptor write against a frequency
	// tier for which no layout was built.
	ErrMissingTierLayout = errors.New("no layout for frequency tier")
	// ErrUnknownEffect signals an operation on an effect handle that was
	// never registered or has been released.
	ErrUnknownEffect = errors.New("unknown shader effect")

	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	ErrUnknown          = errors.New("unknown")
)
