package beamformer

// multiply enqueues C = A x B for the padded problem. The GEMM was built for
// the planned buffer sizes, so a rejection here is a contract violation and
// is reported as a configuration error.
func (b *Beamformer) multiply() error {
	const op = "gemm"
	err := b.gemm.Run(b.stream, b.bufs.get(roleA), b.bufs.get(roleRFTransposed), b.bufs.get(roleBF))
	if err != nil {
		return b.fail(launchKind(err), op, "binary GEMM", err)
	}
	return nil
}
