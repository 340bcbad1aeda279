// Package pkg holds the pollcard libraries.
//
// Pollcard asks one question per week, collects answers on a five-step
// scale and publishes the results as a card image. The packages are:
//
//  1. [survey] - questions, responses, tallies and the storage interface
//  2. [storage/mongo] - MongoDB implementation of the survey store
//  3. [render/card] - result card and avatar rendering
//  4. [render/effects] - optional image effects
//  5. [pipeline] - validate, cache, render and persist
//  6. [results] - results/{year}/{week} naming and file output
//  7. [cache] - memory and Redis caches, keys, duplicate-response guard
//  8. [api] - HTTP endpoints
//  9. [config], [fonts], [errors], [observability], [buildinfo] - support
//
// # Data Flow
//
//	responses (API, bot)
//	         ↓
//	    [survey] Tally → card.Request
//	         ↓
//	    [pipeline] Runner (cache lookup, render, glitch)
//	         ↓
//	    results/{year}/{week}/Option3.png, avatar.png
//
// # Quick Start
//
//	renderer, _ := card.NewRenderer(card.DefaultParams(), nil)
//	png, err := renderer.RenderMain(card.Request{
//	    Date:     "21.05.2024",
//	    Question: "How was your week?",
//	    Overall:  42,
//	    Options:  []card.Option{{Label: "Fine", Percentage: 60}, {Label: "Bad", Percentage: 40}},
//	    Votes:    10,
//	})
//
// [survey]: github.com/matzehuels/pollcard/pkg/survey
// [storage/mongo]: github.com/matzehuels/pollcard/pkg/storage/mongo
// [render/card]: github.com/matzehuels/pollcard/pkg/render/card
// [render/effects]: github.com/matzehuels/pollcard/pkg/render/effects
// [pipeline]: github.com/matzehuels/pollcard/pkg/pipeline
// [results]: github.com/matzehuels/pollcard/pkg/results
// [cache]: github.com/matzehuels/pollcard/pkg/cache
// [api]: github.com/matzehuels/pollcard/pkg/api
// [config]: github.com/matzehuels/pollcard/pkg/config
// [fonts]: github.com/matzehuels/pollcard/pkg/fonts
// [errors]: github.com/matzehuels/pollcard/pkg/errors
// [observability]: github.com/matzehuels/pollcard/pkg/observability
// [buildinfo]: github.com/matzehuels/pollcard/pkg/buildinfo
package pkg
