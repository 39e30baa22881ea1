package transcript

// ChunkDuration is the default chunk length used for context mapping.
const ChunkDuration = 600.0 // seconds

// ChunkByTime partitions segments into contiguous time-bounded chunks.
// A chunk closes as soon as the current segment's end is at least
// chunkDuration past the chunk's start; a trailing partial chunk is
// flushed even if under duration. Every segment lands in exactly one chunk.
func ChunkByTime(segments []Segment, chunkDuration float64) []Chunk {
	if len(segments) == 0 {
		return nil
	}

	var chunks []Chunk
	var current []Segment
	var chunkStart float64

	for _, seg := range segments {
		if len(current) == 0 {
			chunkStart = seg.Start
		}
		current = append(current, seg)

		if seg.End-chunkStart >= chunkDuration {
			chunks = append(chunks, buildChunk(current, chunkStart, seg.End))
			current = nil
		}
	}

	// Flush remaining.
	if len(current) > 0 {
		chunks = append(chunks, buildChunk(current, chunkStart, current[len(current)-1].End))
	}

	return chunks
}

func buildChunk(segs []Segment, start, end float64) Chunk {
	c := Chunk{
		Segments:  make([]Segment, len(segs)),
		StartTime: start,
		EndTime:   end,
	}
	copy(c.Segments, segs)
	return c
}
