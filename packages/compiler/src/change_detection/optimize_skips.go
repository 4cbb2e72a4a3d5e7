package change_detection

// optimizeSkips compacts the skip records of a coalesced list:
//   - a conditional skip of 1 record followed by an unconditional skip of N
//     is replaced by a conditional skip of N with the negated condition,
//   - skips of 0 records are removed.
func optimizeSkips(records []*ProtoRecord) []*ProtoRecord {
	o := &skipOptimizer{
		indexMap: make(indexMap),
		pending:  newPendingSkips(len(records)),
	}

	for protoIndex := 0; protoIndex < len(records); protoIndex++ {
		o.closeSkipsAt(protoIndex)

		src := records[protoIndex]
		if !src.IsSkipRecord() {
			dst := cloneAndUpdateIndexes(src, len(o.dst), o.indexMap)
			o.dst = append(o.dst, dst)
			o.indexMap[src.SelfIndex] = dst.SelfIndex
			continue
		}

		skip := cloneAndUpdateIndexes(src, len(o.dst), o.indexMap)
		if skip.IsConditionalSkipRecord() && skip.SkipTarget() == protoIndex+2 &&
			protoIndex < len(records)-1 && records[protoIndex+1].IsUnconditionalSkipRecord() {
			skip.Mode = negateSkip(skip.Mode)
			skip.setSkipTarget(records[protoIndex+1].SkipTarget())
			protoIndex++
			// skips ending at the consumed record now land on the merged skip
			o.closeSkipsAt(protoIndex)
		}

		if skip.SkipTarget() > protoIndex+1 {
			o.dst = append(o.dst, skip)
			o.pending.register(skip)
		}
	}
	o.closeSkipsAt(len(records))

	return o.dst
}

type skipOptimizer struct {
	dst      []*ProtoRecord
	indexMap indexMap
	pending  pendingSkips
}

func (o *skipOptimizer) closeSkipsAt(protoIndex int) {
	for _, skip := range o.pending.take(protoIndex) {
		skip.setSkipTarget(len(o.dst))
	}
}

func negateSkip(mode RecordType) RecordType {
	switch mode {
	case RecordTypeSkipRecordsIf:
		return RecordTypeSkipRecordsIfNot
	case RecordTypeSkipRecordsIfNot:
		return RecordTypeSkipRecordsIf
	}
	return mode
}
