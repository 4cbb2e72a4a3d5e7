package change_detection

// Coalesce removes "duplicate" records. It assumes that record evaluation
// does not have side effects.
//
// Records that are not last in their binding are removed and every record
// depending on them is updated to read the surviving copy. Records that are
// last in a binding cannot be removed and are replaced with cheap Self
// records instead.
//
// The input records are not modified. The returned list has sequential
// SelfIndex values and skip targets relative to the returned list.
func Coalesce(records []*ProtoRecord) []*ProtoRecord {
	c := newCoalescer(len(records))
	for protoIndex, src := range records {
		c.closeSkipsAt(protoIndex)

		dst := cloneAndUpdateIndexes(src, len(c.dst), c.indexMap)
		if dst.IsSkipRecord() {
			c.dst = append(c.dst, dst)
			c.skipDepth++
			c.pending.register(dst)
			continue
		}

		record := c.mayBeAddRecord(dst)
		c.indexMap[src.SelfIndex] = record.SelfIndex
	}
	c.closeSkipsAt(len(records))

	return optimizeSkips(c.dst)
}

// coalescer is the state of the forward pass
type coalescer struct {
	dst []*ProtoRecord
	// excluded holds the SelfIndex of records added inside a skip scope.
	// They are conditionally evaluated and never reused as a match.
	excluded  map[int]bool
	indexMap  indexMap
	skipDepth int
	pending   pendingSkips
}

func newCoalescer(srcLen int) *coalescer {
	return &coalescer{
		excluded: make(map[int]bool),
		indexMap: make(indexMap),
		pending:  newPendingSkips(srcLen),
	}
}

// closeSkipsAt patches the skip records jumping to the source position
// protoIndex so that they jump to the current end of the destination list.
func (c *coalescer) closeSkipsAt(protoIndex int) {
	for _, skip := range c.pending.take(protoIndex) {
		c.skipDepth--
		skip.setSkipTarget(len(c.dst))
	}
}

// mayBeAddRecord adds record to the destination list or reuses an existing
// record. It returns the record that now holds the value.
func (c *coalescer) mayBeAddRecord(record *ProtoRecord) *ProtoRecord {
	match := c.findFirstMatch(record)

	if match != nil {
		if record.LastInBinding {
			c.dst = append(c.dst, createSelfRecord(record, match.SelfIndex, len(c.dst)+1))
			match.ReferencedBySelf = true
		} else if record.ArgumentToPureFunction {
			match.ArgumentToPureFunction = true
		}
		return match
	}

	if c.skipDepth > 0 {
		c.excluded[record.SelfIndex] = true
	}
	c.dst = append(c.dst, record)
	return record
}

// findFirstMatch returns the first record of the destination list computing
// the same value as record, or nil.
//
// PropertyBindingIndex is deliberately not compared: identical records of
// different bindings are shared.
func (c *coalescer) findFirstMatch(record *ProtoRecord) *ProtoRecord {
	for _, rr := range c.dst {
		if c.excluded[rr.SelfIndex] || rr.Mode == RecordTypeDirectiveLifecycle {
			continue
		}
		if sameDirectiveIndex(rr, record) &&
			rr.Mode == record.Mode &&
			looseIdentical(rr.FuncOrValue, record.FuncOrValue) &&
			rr.ContextIndex == record.ContextIndex &&
			rr.Name == record.Name &&
			intsEqual(rr.Args, record.Args) {
			return rr
		}
	}
	return nil
}

// indexMap maps the SelfIndex of a source record to the SelfIndex of the
// record holding its value in the destination list.
type indexMap map[int]int

// resolve returns the destination index for srcIdx. Indexes that have not
// been remapped, such as the component context (0) or the directive (-1),
// are returned unchanged.
func (m indexMap) resolve(srcIdx int) int {
	if dstIdx, ok := m[srcIdx]; ok {
		return dstIdx
	}
	return srcIdx
}

// cloneAndUpdateIndexes copies record for a destination list of length
// dstLen, remapping the arguments and the context and assigning the next
// SelfIndex. Args and FixedArgs are copied so patching a skip target of the
// clone never touches the source.
func cloneAndUpdateIndexes(record *ProtoRecord, dstLen int, m indexMap) *ProtoRecord {
	var args []int
	if record.Args != nil {
		args = make([]int, len(record.Args))
		for i, src := range record.Args {
			args[i] = m.resolve(src)
		}
	}

	clone := *record
	clone.Args = args
	clone.FixedArgs = copyFixedArgs(record.FixedArgs)
	clone.ContextIndex = m.resolve(record.ContextIndex)
	clone.SelfIndex = dstLen + 1
	return &clone
}

func copyFixedArgs(fixedArgs []interface{}) []interface{} {
	if fixedArgs == nil {
		return nil
	}
	return append([]interface{}(nil), fixedArgs...)
}

// createSelfRecord builds the passthrough record materializing r at
// selfIndex with the value of the record at contextIndex.
func createSelfRecord(r *ProtoRecord, contextIndex, selfIndex int) *ProtoRecord {
	return &ProtoRecord{
		Mode:                 RecordTypeSelf,
		Name:                 "self",
		Args:                 []int{},
		FixedArgs:            copyFixedArgs(r.FixedArgs),
		ContextIndex:         contextIndex,
		DirectiveIndex:       r.DirectiveIndex,
		SelfIndex:            selfIndex,
		BindingRecord:        r.BindingRecord,
		LastInBinding:        r.LastInBinding,
		LastInDirective:      r.LastInDirective,
		PropertyBindingIndex: r.PropertyBindingIndex,
	}
}

// pendingSkips tracks skip records whose target has not been reached yet,
// keyed by the source position they jump to.
type pendingSkips [][]*ProtoRecord

func newPendingSkips(srcLen int) pendingSkips {
	return make(pendingSkips, srcLen+1)
}

// register remembers skip until the traversal reaches its current target.
// Targets past the end of the list are treated as the end of the list.
func (p pendingSkips) register(skip *ProtoRecord) {
	target := skip.SkipTarget()
	if target >= len(p) {
		target = len(p) - 1
	}
	p[target] = append(p[target], skip)
}

func (p pendingSkips) take(protoIndex int) []*ProtoRecord {
	if protoIndex < 0 || protoIndex >= len(p) {
		return nil
	}
	skips := p[protoIndex]
	p[protoIndex] = nil
	return skips
}
