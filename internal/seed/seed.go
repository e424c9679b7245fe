// Package seed fills a record store with sample services and reviews for
// local development.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/internal/repository"
)

type serviceDef struct {
	name        string
	description string
	price       int
}

var services = []serviceDef{
	{"Fact checking", "Independent verification of claims and sources before publication.", 120},
	{"Copy editing", "Line-by-line edit for grammar, style and house rules.", 80},
	{"Investigative research", "Document requests, interviews and background research.", 450},
	{"Photo journalism", "On-site photo coverage with captioned selects.", 300},
	{"Interview transcription", "Verbatim transcripts delivered within 48 hours.", 60},
	{"Data journalism", "Dataset cleaning, analysis and publication-ready charts.", 380},
}

var reviewers = []string{
	"ana@example.com",
	"ben@example.com",
	"chloe@example.com",
	"dmitri@example.com",
}

var comments = []string{
	"Thorough and fast.",
	"Caught two errors we had missed.",
	"Good work, a bit late on delivery.",
	"Exactly what the desk needed.",
	"Would hire again.",
}

// Options controls how much data Run inserts.
type Options struct {
	// ReviewsPerService is the number of reviews attached to each service.
	ReviewsPerService int
	// Rand picks reviewers, ratings and comments. Nil uses a random source.
	Rand *rand.Rand
}

// Result reports the ids Run created.
type Result struct {
	ServiceIDs []string
	ReviewIDs  []string
}

// Run inserts every sample service and opts.ReviewsPerService reviews for
// each. It stops at the first store error.
func Run(ctx context.Context, store repository.Store, opts Options, logger *slog.Logger) (*Result, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	servicesColl := store.Collection(domain.CollectionServices)
	reviewsColl := store.Collection(domain.CollectionReviews)
	res := &Result{}

	for _, def := range services {
		id, err := servicesColl.Insert(ctx, domain.Document{
			"name":        def.name,
			"description": def.description,
			"price":       def.price,
		})
		if err != nil {
			return res, fmt.Errorf("seed service %q: %w", def.name, err)
		}
		res.ServiceIDs = append(res.ServiceIDs, id)
		logger.InfoContext(ctx, "seeded service", slog.String("id", id), slog.String("name", def.name))

		for i := 0; i < opts.ReviewsPerService; i++ {
			rid, err := reviewsColl.Insert(ctx, domain.Document{
				domain.ReviewEmailField:   reviewers[rng.IntN(len(reviewers))],
				domain.ReviewServiceField: id,
				"rating":                  1 + rng.IntN(5),
				"comment":                 comments[rng.IntN(len(comments))],
			})
			if err != nil {
				return res, fmt.Errorf("seed review for %q: %w", def.name, err)
			}
			res.ReviewIDs = append(res.ReviewIDs, rid)
		}
	}

	logger.InfoContext(ctx, "seed complete",
		slog.Int("services", len(res.ServiceIDs)),
		slog.Int("reviews", len(res.ReviewIDs)),
	)
	return res, nil
}
