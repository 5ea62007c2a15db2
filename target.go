package mbedtargets

import "errors"

// Target is a read-only view of one board database record.
//
// Target holds its [RawRecord] by reference and derives every attribute on
// access. Missing attributes are not errors: absent strings read as "" and
// absent lists as an empty, non-nil slice. A present attribute of the wrong
// type has no meaningful value: its accessor returns the empty default, and
// [Target.Validate] and [Targets.All] report it with [ErrMalformedRecord].
//
// The zero Target behaves like a Target over an empty record.
type Target struct {
	raw RawRecord
}

// NewTarget wraps raw without copying it.
//
// Example:
//
//	target := mbedtargets.NewTarget(mbedtargets.RawRecord{
//	    "attributes": map[string]any{"board_type": "K64F", "product_code": "0240"},
//	})
//	fmt.Println(target.BoardType()) // K64F
func NewTarget(raw RawRecord) Target {
	return Target{raw: raw}
}

// BoardType returns attributes.board_type, e.g. "K64F".
func (t Target) BoardType() string {
	s, _ := stringAt(t.raw, boardTypePath)
	return s
}

// PlatformName returns attributes.name, the human-readable board name.
func (t Target) PlatformName() string {
	s, _ := stringAt(t.raw, platformNamePath)
	return s
}

// ProductCode returns attributes.product_code, the four character code
// that prefixes the board's USB serial number.
func (t Target) ProductCode() string {
	s, _ := stringAt(t.raw, productCodePath)
	return s
}

// MbedOSSupport returns attributes.features.mbed_os_support.
// The returned slice is a copy.
func (t Target) MbedOSSupport() []string {
	list, _ := stringsAt(t.raw, mbedOSSupportPath)
	return list
}

// MbedEnabled returns attributes.features.mbed_enabled.
// The returned slice is a copy.
func (t Target) MbedEnabled() []string {
	list, _ := stringsAt(t.raw, mbedEnabledPath)
	return list
}

// Raw returns the wrapped record itself, not a copy.
// Callers must not modify it.
func (t Target) Raw() RawRecord {
	return t.raw
}

// Validate reports every attribute that is present but has an unexpected
// type. Each reported error wraps [ErrMalformedRecord]. Absent attributes
// are valid.
func (t Target) Validate() error {
	var errs []error
	seen := make(map[string]bool)

	// a malformed parent object is reported once, not once per attribute below it
	add := func(err error) {
		if err != nil && !seen[err.Error()] {
			seen[err.Error()] = true
			errs = append(errs, err)
		}
	}

	for _, path := range [][]string{boardTypePath, platformNamePath, productCodePath} {
		_, err := stringAt(t.raw, path)
		add(err)
	}
	for _, path := range [][]string{mbedOSSupportPath, mbedEnabledPath} {
		_, err := stringsAt(t.raw, path)
		add(err)
	}

	return errors.Join(errs...)
}
