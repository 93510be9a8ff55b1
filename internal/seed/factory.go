// Package seed provides helpers to create demo blog content for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var tagPool = []string{
	"go", "web", "databases", "devops", "testing",
	"performance", "tutorial", "opinion", "tooling", "architecture",
}

// Factory builds post inputs with realistic content. Posts are always
// created through the service layer so slugs and validation behave
// exactly as they do for API clients.
type Factory struct {
	rng *rand.Rand
}

// NewFactory creates a new Factory with its own randomness source.
func NewFactory() *Factory {
	now := time.Now().UnixNano()
	gofakeit.Seed(now)
	return &Factory{rng: rand.New(rand.NewSource(now))}
}

// BuildPostInput constructs a create request populated with fake content.
func (f *Factory) BuildPostInput(overrides ...func(*service.CreatePostInput)) service.CreatePostInput {
	input := service.CreatePostInput{
		Title:      gofakeit.Sentence(f.rng.Intn(5) + 3),
		Content:    gofakeit.Paragraph(2, 4, 8, "\n\n"),
		Excerpt:    gofakeit.Sentence(10),
		CoverImage: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630.jpg", gofakeit.UUID()),
		Tags:       models.TagList(f.pickTags()),
	}

	for _, override := range overrides {
		override(&input)
	}
	return input
}

func (f *Factory) pickTags() []string {
	n := f.rng.Intn(4)
	tags := make([]string, 0, n)
	seen := map[string]bool{}
	for len(tags) < n {
		tag := tagPool[f.rng.Intn(len(tagPool))]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
