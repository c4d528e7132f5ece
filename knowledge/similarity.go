package knowledge

// Similarity computes a bounded [0,1] similarity between two strings using
// the classic sequence-matcher ratio: 2*M/T, where M is the total size of
// the longest matching blocks found recursively and T the combined length.
// Similarity(a, a) == 1 for any a; strings sharing no characters score 0.
// Callers are expected to pass normalized text. Operates on runes so
// multibyte scripts compare code point by code point.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	// Index positions of every rune in b for the longest-block search.
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	matches := 0
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(ra), 0, len(rb)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		besti, bestj, size := longestMatch(ra, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if size == 0 {
			continue
		}
		matches += size
		queue = append(queue,
			span{s.alo, besti, s.blo, bestj},
			span{besti + size, s.ahi, bestj + size, s.bhi},
		)
	}

	return 2.0 * float64(matches) / float64(total)
}

// longestMatch finds the longest block of runes common to a[alo:ahi] and
// b[blo:bhi], where b2j indexes rune positions in b. Among equally long
// blocks the earliest in a, then earliest in b, wins.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
