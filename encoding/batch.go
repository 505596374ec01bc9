package encoding

import "fmt"

// BatchRoundSize bounds how many entities are clustered into batches per
// round: one scratch byte buffer of BatchKeySize*BatchRoundSize bytes is
// reused across rounds rather than allocated per-entity. Higher means more
// scratch memory but fewer virtual-dispatch calls into the batch encoders.
const BatchRoundSize = 1024

// clusterBatches runs the batch clustering pass (§4.7) for one pipeline: it
// invokes every resolved batch encoder's EncodeBatchKeys in fixed-size
// rounds, deduplicates the resulting key bytes into batch ids in
// first-occurrence order, and returns the list of {entity_id, write_index =
// batch_id} ops for the first entity observed in each distinct batch — the
// ops the batch encoders' full Encode pass must run over.
//
// p.BatchPerEntity and p.BatchOffsets are populated in place.
func clusterBatches(p *Pipeline, encoders []BatchEncoder, roundSize int) []Op {
	n := len(p.EntitySet)

	if n == 0 {
		p.BatchPerEntity = p.BatchPerEntity[:0]
		p.BatchOffsets = append(p.BatchOffsets[:0], 0)
		return nil
	}

	keySize := 0
	for _, e := range encoders {
		keySize += e.BatchKeySize()
	}

	// No batch encoders and a non-empty batch region would be an unservable
	// layout (caught by the registry cover, not here); with no batch
	// encoders at all every entity shares the single implicit batch 0.
	if keySize == 0 {
		p.BatchPerEntity = p.BatchPerEntity[:0]
		for range p.EntitySet {
			p.BatchPerEntity = append(p.BatchPerEntity, 0)
		}
		p.BatchOffsets = append(p.BatchOffsets[:0], 0, uint32(n))
		return []Op{{EntityId: p.EntitySet[0], WriteIndex: 0}}
	}

	type batchRecord struct {
		id    uint16
		count int
	}
	seen := make(map[string]*batchRecord)
	var counts []int
	var batchWrites []Op

	p.BatchPerEntity = p.BatchPerEntity[:0]
	ops := make([]Op, 0, roundSize)
	scratch := make([]byte, keySize*roundSize)
	rows := make([][]byte, roundSize)

	for start := 0; start < n; start += roundSize {
		end := start + roundSize
		if end > n {
			end = n
		}
		roundLen := end - start

		ops = ops[:0]
		for local := 0; local < roundLen; local++ {
			ops = append(ops, Op{EntityId: p.EntitySet[start+local], WriteIndex: local})
		}

		segOffset := 0
		for _, e := range encoders {
			width := e.BatchKeySize()
			segLen := width * roundLen
			e.EncodeBatchKeys(ops, scratch[segOffset:segOffset+segLen])
			segOffset += width * roundSize
		}

		for local := 0; local < roundLen; local++ {
			row := rows[local][:0]
			segOffset := 0
			for _, e := range encoders {
				width := e.BatchKeySize()
				row = append(row, scratch[segOffset+local*width:segOffset+local*width+width]...)
				segOffset += width * roundSize
			}
			rows[local] = row

			key := string(row)
			rec, hit := seen[key]
			if !hit {
				rec = &batchRecord{id: uint16(len(counts)), count: 0}
				seen[key] = rec
				counts = append(counts, 0)
				batchWrites = append(batchWrites, Op{
					EntityId:   p.EntitySet[start+local],
					WriteIndex: int(rec.id),
				})
			}
			rec.count++
			counts[rec.id] = rec.count
			p.BatchPerEntity = append(p.BatchPerEntity, rec.id)
		}
	}

	if len(p.BatchPerEntity) != n {
		panic(fmt.Sprintf("encoding: batch clustering produced %d entries, want %d", len(p.BatchPerEntity), n))
	}

	offsets := make([]uint32, len(counts)+1)
	for i, c := range counts {
		offsets[i+1] = offsets[i] + uint32(c)
	}
	p.BatchOffsets = offsets

	return batchWrites
}
