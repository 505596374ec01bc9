package encoding

// TextureHandle is an opaque GPU resource binding handle. The core never
// loads, decodes, or owns the referenced texture — it only forwards the
// handle verbatim, per the asset-loading Non-goal.
type TextureHandle string

// EncodedDescriptor is a tagged union over descriptor-kind properties. Only
// the field matching Kind is meaningful.
type EncodedDescriptor struct {
	Kind    PropertyKind
	Texture TextureHandle
}
