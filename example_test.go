package dirz_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/zoobzio/dirz"
)

type World struct {
	Carbon int
	Oxygen int
}

func Example() {
	registry := dirz.NewRegistry[*World]("earth")
	defer registry.Close()

	_ = registry.Register(
		dirz.Guard("compress", dirz.Forward,
			func(_ context.Context, w *World) bool { return w.Carbon >= 10 },
			func(_ context.Context, w *World) *World { w.Carbon -= 10; return w },
			errors.New("not enough carbon"),
		),
		dirz.Transform("oxygen", dirz.Backward, func(_ context.Context, w *World) *World {
			w.Oxygen += 5
			return w
		}),
	)
	registry.Seal()

	world := &World{Carbon: 50}
	world, _ = registry.Invoke(context.Background(), "compress", dirz.Forward, world)
	world, _ = registry.Invoke(context.Background(), "oxygen", dirz.Backward, world)
	fmt.Printf("C:%d O:%d\n", world.Carbon, world.Oxygen)

	_, err := registry.Invoke(context.Background(), "compress", dirz.Forward, &World{Carbon: 5})
	var te *dirz.TransformError[*World]
	if errors.As(err, &te) {
		fmt.Printf("%s %s: %v\n", te.Direction, te.Name, te.Reason)
	}
	// Output:
	// C:40 O:5
	// IN compress: not enough carbon
}

func ExamplePipeline() {
	registry := dirz.NewRegistry[int]("numbers")
	defer registry.Close()

	_ = registry.Register(
		dirz.Transform("double", dirz.Forward, func(_ context.Context, n int) int { return n * 2 }),
		dirz.Apply("halve", dirz.Backward, func(_ context.Context, n int) (int, error) {
			if n%2 != 0 {
				return n, errors.New("odd value")
			}
			return n / 2, nil
		}),
	)

	pipeline := dirz.NewPipeline("round-trip", registry, dirz.In("double"), dirz.Out("halve"), dirz.Out("halve"))
	defer pipeline.Close()

	result, report, err := pipeline.Run(context.Background(), 6)
	fmt.Println(result, report.Status, report.Completed, err != nil)

	result, report, _ = pipeline.Run(context.Background(), 3)
	fmt.Println(result, report.Status, report.Step)
	// Output:
	// 3 completed 3 false
	// 3 failed 2
}
