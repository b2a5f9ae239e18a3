package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Boolean retrieval models treat every document as a set of terms.
        A query combines terms with AND, OR and NOT, and the answer is the set of
        documents that satisfies the expression. Positional indexes extend the model
        so that two terms can be required to appear within a few words of each other.`,
	"long": strings.Repeat(`Information retrieval systems form the backbone of modern search
        infrastructure. These systems combine tokenization, stemming, and stop word
        removal to normalize text into searchable terms. The inverted index maps each
        term to the documents containing it, along with positional information for
        proximity queries. `, 20),
}

func benchPipeline(b *testing.B) *Pipeline {
	b.Helper()
	p, err := New(config.AnalysisConfig{}, nil)
	if err != nil {
		b.Fatal(err)
	}
	return p
}

func BenchmarkPreprocess(b *testing.B) {
	p := benchPipeline(b)
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = p.Preprocess(text)
			}
		})
	}
}

func BenchmarkPreprocessParallel(b *testing.B) {
	p := benchPipeline(b)
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = p.Preprocess(text)
		}
	})
}

func BenchmarkPositionalTokens(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "well-known boolean retrieval over positional postings "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = PositionalTokens(text)
			}
		})
	}
}
