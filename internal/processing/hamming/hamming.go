// Package hamming measures Hamming distances between byte-encoded binary
// vectors.
package hamming

import "fmt"

// Distance counts the positions where u and v differ. Vectors of different
// lengths violate an internal invariant and panic.
func Distance(u, v []byte) int {
	if len(u) != len(v) {
		panic(fmt.Sprintf("hamming: vector lengths differ (%d != %d)", len(u), len(v)))
	}

	sum := 0
	for i := range u {
		if u[i] != v[i] {
			sum++
		}
	}
	return sum
}

// ToEach splits the flattened realizations into chunks of len(center) and
// returns the distance of every chunk to center, in realization order.
func ToEach(realizations, center []byte) []int {
	if len(center) == 0 {
		return []int{}
	}

	distances := make([]int, 0, (len(realizations)+len(center)-1)/len(center))
	for start := 0; start < len(realizations); start += len(center) {
		end := start + len(center)
		if end > len(realizations) {
			end = len(realizations)
		}
		distances = append(distances, Distance(realizations[start:end], center))
	}
	return distances
}

// Max returns the largest value in each of the given slices, or 0 when all are
// empty.
func Max(distances ...[]int) int {
	maxDistance := 0
	for _, ds := range distances {
		for _, d := range ds {
			if d > maxDistance {
				maxDistance = d
			}
		}
	}
	return maxDistance
}
