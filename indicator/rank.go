// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package indicator

import (
	"math"
	"sort"
)

// RankDescending assigns rank 1 to the largest value. Tied values share the
// average of the ranks they span and NaN values are left unranked (NaN).
func RankDescending(values []float64) []float64 {
	ranks := make([]float64, len(values))
	order := make([]int, 0, len(values))
	for idx, val := range values {
		if math.IsNaN(val) {
			ranks[idx] = math.NaN()
			continue
		}
		order = append(order, idx)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return values[order[i]] > values[order[j]]
	})

	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && values[order[end]] == values[order[start]] {
			end++
		}

		// positions start..end-1 hold equal values: ranks start+1..end
		avg := float64(start+1+end) / 2
		for pos := start; pos < end; pos++ {
			ranks[order[pos]] = avg
		}

		start = end
	}

	return ranks
}
