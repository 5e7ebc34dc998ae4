package io

import (
	"sync"

	"github.com/ecopia-map/surface_tiler/internal/shapes"
)

type Producer interface {
	Produce(work chan *WorkUnit, wg *sync.WaitGroup, shapes []shapes.Shape)
}

type Consumer interface {
	Consume(workchan chan *WorkUnit, results chan *shapes.Prepared, errchan chan error, waitGroup *sync.WaitGroup)
}
