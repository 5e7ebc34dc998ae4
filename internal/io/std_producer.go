package io

import (
	"sync"

	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/ecopia-map/surface_tiler/internal/shapes"
)

type StandardProducer struct {
	globe *globe.Globe
}

func NewStandardProducer(g *globe.Globe) *StandardProducer {
	return &StandardProducer{globe: g}
}

// Submits one WorkUnit per shape to the provided work channel, skipping nil shapes.
// Closes the channel when all work is submitted.
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup, shapeList []shapes.Shape) {
	for _, s := range shapeList {
		if s == nil {
			continue
		}
		work <- &WorkUnit{
			Shape: s,
			Globe: p.globe,
		}
	}
	close(work)
	wg.Done()
}
