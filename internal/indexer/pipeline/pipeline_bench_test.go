package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/stemmer"
)

var sampleTexts = map[string]string{
	"short": "What do you call a bear with no teeth? A gummy bear!",
	"medium": `I told my wife she was drawing her eyebrows too high. She looked surprised.
        Why don't skeletons fight each other? They don't have the guts. I'm reading a
        book about anti-gravity. It's impossible to put down.`,
	"long": strings.Repeat(`Parallel lines have so much in common. It's a shame they'll never
        meet. I used to play piano by ear, but now I use my hands. The scarecrow won an
        award because he was outstanding in his field. `, 20),
}

func BenchmarkTerms(b *testing.B) {
	p := New(stemmer.New())
	ctx := context.Background()
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = p.Terms(ctx, text)
			}
		})
	}
}

func BenchmarkTermsParallel(b *testing.B) {
	p := New(stemmer.New())
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			_ = p.Terms(ctx, text)
		}
	})
}

func BenchmarkNormalize(b *testing.B) {
	tokens := Tokenize(sampleTexts["long"])
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Normalize(tokens)
	}
}
