package bindgen

import "github.com/chazu/bindgen/metadata"

// Classify assigns the calling convention of d. It is total: every
// descriptor that matches no specific convention is PreserveSig.
func Classify(d *metadata.MethodDescriptor) SignatureKind {
	n := len(d.Params)
	status := d.Return.Kind == metadata.KindStatus

	if status && n >= 2 && isIdentitySlot(d.Params[n-2]) && isInterfaceSlot(d.Params[n-1]) {
		if d.Params[n-1].Optional {
			return QueryOptional
		}
		return Query
	}
	if status && n >= 1 && isRetvalSlot(d.Params[n-1]) {
		return ResultValue
	}
	if status && (n == 0 || !d.Params[n-1].Output) {
		return ResultVoid
	}
	if d.Return.Kind == metadata.KindStruct {
		return ReturnStruct
	}
	return PreserveSig
}

// Ambiguous reports descriptors that return a status but fall through to
// PreserveSig because their trailing output slot does not fit ResultValue.
// These need explicit curation rather than a guessed convention.
func Ambiguous(d *metadata.MethodDescriptor) bool {
	return d.Return.Kind == metadata.KindStatus && Classify(d) == PreserveSig
}

// isIdentitySlot matches a pointer to a GUID, the interface identifier.
func isIdentitySlot(p metadata.ParameterDescriptor) bool {
	n, inner := p.Type.Indirection()
	return n == 1 && inner.Kind == metadata.KindGUID && !p.Output
}

// isInterfaceSlot matches an output pointer to an untyped interface pointer.
func isInterfaceSlot(p metadata.ParameterDescriptor) bool {
	if !p.Output {
		return false
	}
	n, inner := p.Type.Indirection()
	return n == 2 && inner.Kind == metadata.KindVoid
}

// isRetvalSlot matches a required output pointer to a single value.
func isRetvalSlot(p metadata.ParameterDescriptor) bool {
	if !p.Output || p.Optional {
		return false
	}
	n, inner := p.Type.Indirection()
	if n != 1 {
		return false
	}
	switch inner.Kind {
	case metadata.KindVoid, metadata.KindStatus, metadata.KindPointer:
		return false
	}
	return true
}
