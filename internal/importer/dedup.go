package importer

import (
	"strings"

	"github.com/zeebo/xxh3"

	"crmconsole/internal/rowmap"
)

// DedupRows drops rows whose value in the key column repeats an earlier
// row's value (keep-first). Values are compared case-insensitively after
// trimming; rows with an empty key value are always kept, since an absent
// key says nothing about duplication. Seen keys are tracked as xxh3 hashes
// so arbitrarily large sheets stay cheap to scan.
//
// The returned slice preserves input order. keptIdx holds each kept row's
// 0-based position in the input, so outcome row numbers still point at the
// pre-dedup source even after rows between them are removed. dropped reports
// how many rows were removed. An empty key column disables deduplication.
func DedupRows(rows []rowmap.Row, key string) (kept []rowmap.Row, keptIdx []int, dropped int) {
	if key == "" || len(rows) == 0 {
		keptIdx = make([]int, len(rows))
		for i := range keptIdx {
			keptIdx[i] = i
		}
		return rows, keptIdx, 0
	}

	seen := make(map[uint64]struct{}, len(rows))
	kept = make([]rowmap.Row, 0, len(rows))
	keptIdx = make([]int, 0, len(rows))
	for i, row := range rows {
		v := strings.ToLower(strings.TrimSpace(row[key]))
		if v == "" {
			kept = append(kept, row)
			keptIdx = append(keptIdx, i)
			continue
		}
		h := xxh3.HashString(v)
		if _, dup := seen[h]; dup {
			dropped++
			continue
		}
		seen[h] = struct{}{}
		kept = append(kept, row)
		keptIdx = append(keptIdx, i)
	}
	return kept, keptIdx, dropped
}
