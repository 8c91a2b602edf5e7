package similarity

import "math"

// Cosine computes the cosine similarity between two sparse weight vectors:
// the dot product divided by the product of Euclidean norms. If either vector
// has zero magnitude the result is 0, never a division error. With
// non-negative TF-IDF weights the result lies in [0, 1].
func Cosine(a, b Vector) float64 {
	// Iterate the smaller map; only shared terms contribute to the dot product.
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	if dot == 0 {
		return 0
	}

	magA := magnitude(a)
	magB := magnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}

func magnitude(v Vector) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}
