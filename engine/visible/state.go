package visible

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
)

// builderState is the two-state machine every assembler embeds. The only transition
// is open -> finalized, taken once whether finalization succeeds or not.
type builderState struct {
	finalized bool
}

// check returns KindBuilderInvalid once the builder is finalized.
func (s *builderState) check(op string) *Error {
	if s.finalized {
		return newError(KindBuilderInvalid, op, "already finalized")
	}
	return nil
}

// finish performs the open -> finalized transition.
func (s *builderState) finish(op string) *Error {
	if err := s.check(op); err != nil {
		return err
	}
	s.finalized = true
	return nil
}

// batches buckets instances by signature, remembering the order in which
// signatures were first used.
type batches struct {
	order []material.Signature
	byKey map[material.Signature][]instance.Instance
}

func newBatches() *batches {
	return &batches{byKey: make(map[material.Signature][]instance.Instance)}
}

func (b *batches) add(sig material.Signature, inst instance.Instance) {
	bucket, ok := b.byKey[sig]
	if !ok {
		b.order = append(b.order, sig)
	}
	b.byKey[sig] = append(bucket, inst)
}

func (b *batches) count() int {
	n := 0
	for _, bucket := range b.byKey {
		n += len(bucket)
	}
	return n
}

// freeze copies the buckets into a batchSet that no assembler can reach.
func (b *batches) freeze() batchSet {
	out := batchSet{
		order: slices.Clone(b.order),
		byKey: make(map[material.Signature][]instance.Instance, len(b.byKey)),
	}
	for sig, bucket := range b.byKey {
		out.byKey[sig] = slices.Clone(bucket)
	}
	return out
}

// batchSet is the frozen form of batches. Accessors hand out copies so a snapshot
// stays immutable no matter what readers do with the result.
type batchSet struct {
	order []material.Signature
	byKey map[material.Signature][]instance.Instance
}

func (b batchSet) signatures() []material.Signature {
	return slices.Clone(b.order)
}

func (b batchSet) instances(sig material.Signature) ([]instance.Instance, bool) {
	bucket, ok := b.byKey[sig]
	if !ok {
		return nil, false
	}
	return slices.Clone(bucket), true
}

func (b batchSet) count() int {
	n := 0
	for _, bucket := range b.byKey {
		n += len(bucket)
	}
	return n
}
