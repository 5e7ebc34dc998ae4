package io

import (
	"errors"
	"sync"

	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/ecopia-map/surface_tiler/internal/shapes"
	"github.com/golang/glog"
)

var ErrPreparation = errors.New("errors raised during geometry preparation")

// Prepares the geometry of the given shapes with one producer and numConsumers consumer goroutines. Results are
// returned in no particular order.
func PrepareShapes(g *globe.Globe, shapeList []shapes.Shape, numConsumers int) ([]*shapes.Prepared, error) {
	if numConsumers < 1 {
		numConsumers = 1
	}

	// init channel where to submit work with a buffer 5 times greater than the number of consumers
	workChannel := make(chan *WorkUnit, numConsumers*5)
	resultChannel := make(chan *shapes.Prepared, numConsumers*5)

	// every consumer submits at most one error
	errorChannel := make(chan error, numConsumers)

	var waitGroup sync.WaitGroup

	waitGroup.Add(1)
	producer := NewStandardProducer(g)
	go producer.Produce(workChannel, &waitGroup, shapeList)

	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := NewStandardConsumer()
		go consumer.Consume(workChannel, resultChannel, errorChannel, &waitGroup)
	}

	collected := make(chan []*shapes.Prepared)
	go func() {
		var prepared []*shapes.Prepared
		for p := range resultChannel {
			prepared = append(prepared, p)
		}
		collected <- prepared
	}()

	waitGroup.Wait()
	close(resultChannel)
	close(errorChannel)
	prepared := <-collected

	var errs []error
	for err := range errorChannel {
		glog.Warning(err)
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return prepared, errors.Join(append([]error{ErrPreparation}, errs...)...)
	}

	return prepared, nil
}
