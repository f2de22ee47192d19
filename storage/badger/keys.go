// Copyright 2026 Civita Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"encoding/binary"
	"fmt"
)

// Table names used in key construction.
const (
	tableCases     = "cases"
	tablePersonnel = "pers"
	tableVehicles  = "vehi"
	tableZones     = "zone"
	tableChunks    = "chunk"
)

// Key prefixes for the generation scheme. Rows live under a
// generation-qualified prefix; a small pointer key per table names the
// generation readers should use. Replacing a table means writing the new
// generation's rows and flipping the pointer, so readers always see one
// complete generation.
const (
	genPointerPrefix = "gen"
	rowPrefix        = "row"
	caseKeyIdxPrefix = "ckey"
)

// makeGenPointerKey generates the pointer key naming a table's live generation.
func makeGenPointerKey(table string) []byte {
	return []byte(fmt.Sprintf("%s:%s", genPointerPrefix, table))
}

// makeRowPrefix generates the key prefix for all rows of one table generation.
// Format: row:<table>:<gen>
func makeRowPrefix(table string, gen uint64) []byte {
	prefix := fmt.Sprintf("%s:%s:", rowPrefix, table)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], gen)
	return buf
}

// makeRowKey generates the key for one row. Seq is the zero-based source
// row position; BigEndian encoding makes iteration order equal source order.
// Format: row:<table>:<gen>:<seq>
func makeRowKey(table string, gen, seq uint64) []byte {
	prefix := makeRowPrefix(table, gen)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeCaseKeyIdxPrefix generates the key prefix for one generation of the
// case-key lookup index.
func makeCaseKeyIdxPrefix(gen uint64) []byte {
	prefix := caseKeyIdxPrefix + ":"
	buf := make([]byte, len(prefix)+8+1)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], gen)
	buf[len(buf)-1] = ':'
	return buf
}

// makeCaseKeyIdxKey generates the lookup key from entry key to row seq.
// Format: ckey:<gen>:<caseKey>
func makeCaseKeyIdxKey(gen uint64, caseKey string) []byte {
	prefix := makeCaseKeyIdxPrefix(gen)
	buf := make([]byte, len(prefix)+len(caseKey))
	offset := copy(buf, prefix)
	copy(buf[offset:], caseKey)
	return buf
}

// encodeGen encodes a generation or seq number as its 8-byte value form.
func encodeGen(gen uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, gen)
	return buf
}

// decodeGen decodes an 8-byte generation or seq value. Returns 0 for
// malformed input.
func decodeGen(data []byte) uint64 {
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}
