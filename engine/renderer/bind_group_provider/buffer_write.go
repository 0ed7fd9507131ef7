package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// End returns the byte offset one past the last byte written.
//
// Returns:
//   - uint64: Offset + len(Data)
func (w BufferWrite) End() uint64 {
	return w.Offset + uint64(len(w.Data))
}
