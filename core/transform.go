package core

// Transformer mutates a SessionDetail in place.
type Transformer interface {
	Transform(d *SessionDetail) error
}

// Chain applies transformers in order, stopping at the first error.
func Chain(d *SessionDetail, transformers ...Transformer) error {
	for _, tr := range transformers {
		if err := tr.Transform(d); err != nil {
			return err
		}
	}
	return nil
}
