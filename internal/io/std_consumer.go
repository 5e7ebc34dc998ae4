package io

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ecopia-map/surface_tiler/internal/shapes"
	"github.com/golang/glog"
)

var ErrInvalidWorkUnit = errors.New("work unit without shape or globe")

type StandardConsumer struct{}

func NewStandardConsumer() *StandardConsumer {
	return &StandardConsumer{}
}

// Continually consumes WorkUnits submitted to a work channel, sending the prepared geometry of each shape to the
// results channel. Continues working until the work channel is closed or an error is raised. In this last case
// submits the error to the error channel before quitting.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, results chan *shapes.Prepared, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	for work := range workchan {
		prepared, err := c.doWork(work)
		if err != nil {
			errchan <- err
			glog.Warningf("geometry preparation worker stopped: %v", err)
			// drain so that the producer is never blocked on a dead pool
			for range workchan {
			}
			return
		}
		results <- prepared
	}
}

func (c *StandardConsumer) doWork(workUnit *WorkUnit) (*shapes.Prepared, error) {
	if workUnit == nil || workUnit.Shape == nil || workUnit.Globe == nil {
		return nil, ErrInvalidWorkUnit
	}
	prepared := shapes.Prepare(workUnit.Shape, workUnit.Globe)
	if prepared == nil {
		return nil, fmt.Errorf("shape %q: %w", workUnit.Shape.DisplayName(), ErrInvalidWorkUnit)
	}
	return prepared, nil
}
