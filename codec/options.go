package codec

// DefaultMaxDepth bounds message nesting during parse. The wire contract
// itself does not require a cap; this keeps pathologically nested input from
// recursing without limit.
const DefaultMaxDepth = 100

// UnmarshalOptions controls parse behavior.
type UnmarshalOptions struct {
	// RetainUnknownFields preserves the raw bytes of fields not present in
	// the schema so they survive a round-trip. Default on.
	RetainUnknownFields bool

	// IgnoreIncorrectTypes demotes wire-type mismatches on known fields from
	// fatal errors to skip-and-record-as-unknown. Default off.
	IgnoreIncorrectTypes bool

	// MaxDepth overrides the nesting cap. Zero means DefaultMaxDepth.
	MaxDepth int
}

// DefaultUnmarshalOptions returns the standard parse flags:
// retain_unknown_fields on, ignore_incorrect_types off.
func DefaultUnmarshalOptions() UnmarshalOptions {
	return UnmarshalOptions{RetainUnknownFields: true}
}

func (o UnmarshalOptions) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}
