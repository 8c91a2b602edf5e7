// Package similarity ranks a newly ingested document against a user's prior
// corpus using TF-IDF weights and cosine similarity.
//
// The vector space is rebuilt from the full corpus on every ingestion, which
// is O(corpus size x vocabulary) per upload. That is fine for the small
// per-user corpora this service sees; it is a known scalability boundary,
// not something to optimize away here.
package similarity

import (
	"math"
	"strings"
)

// Vector is a sparse term-to-weight mapping. Terms absent from the map have
// weight zero.
type Vector map[string]float64

// BuildVectors produces one TF-IDF weight vector per input document over the
// shared vocabulary of all inputs. Inputs are normalized texts whose tokens
// are separated by single spaces. Callers compare index 0 (the new document)
// against the rest.
//
// TF is the raw term count within a document. IDF is ln(N/df): a term present
// in every document weighs exactly zero, and a term unique to one document
// carries the maximum IDF in the space.
func BuildVectors(docs []string) []Vector {
	n := len(docs)
	counts := make([]map[string]int, n)
	df := make(map[string]int)

	for i, doc := range docs {
		tf := make(map[string]int)
		for _, term := range strings.Fields(doc) {
			tf[term]++
		}
		counts[i] = tf
		for term := range tf {
			df[term]++
		}
	}

	vectors := make([]Vector, n)
	for i, tf := range counts {
		vec := make(Vector, len(tf))
		for term, count := range tf {
			idf := math.Log(float64(n) / float64(df[term]))
			if w := float64(count) * idf; w > 0 {
				vec[term] = w
			}
		}
		vectors[i] = vec
	}
	return vectors
}
