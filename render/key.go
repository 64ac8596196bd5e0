package render

// A position key is packed into an integer together with three flag bits.
// Generated code passes the packed form to Node; these constants are the
// contract between the compiler and the renderer.
const (
	// FlagElement marks a call that produces an element rather than text.
	FlagElement = 1 << 0

	// FlagChildless marks an element call that opens no child scope and is
	// therefore not matched by a Close.
	FlagChildless = 1 << 1

	// FlagNamespace marks an element call whose attributes carry an xmlns
	// the element must be created under.
	FlagNamespace = 1 << 2

	// KeyShift is how far the position key is shifted past the flag bits.
	KeyShift = 3
)

// Pack combines a position key and flag bits into their wire form.
func Pack(key, flags int) int {
	return key<<KeyShift | flags
}
