package optics_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/optics"
	"github.com/hupe1980/optics/distance"
)

// Example demonstrates clustering points on a line.
func Example() {
	points := [][]float64{
		{0}, {10}, {15}, {18}, {22},
		{50}, {55}, {56}, {60},
		{80}, {85}, {90},
	}

	res, err := optics.Cluster(context.Background(), points, distance.SquaredL2, optics.Params{
		MaxDistance: 3900,
		MinPoints:   2,
		Xi:          0.1,
	})
	if err != nil {
		log.Fatal(err)
	}

	for i, c := range res.Clusters {
		fmt.Println(i, c)
	}
	fmt.Println("noise:", len(res.NotClustered))
	// Output:
	// 0 [[0] [10] [15] [18] [22]]
	// 1 [[50] [56] [60] [55]]
	// 2 [[80] [90] [85]]
	// noise: 0
}

// ExampleClusterer_Order demonstrates reading the reachability plot.
func ExampleClusterer_Order() {
	c, err := optics.New(distance.SquaredL2)
	if err != nil {
		log.Fatal(err)
	}

	ord, err := c.Order(context.Background(), [][]float64{{0}, {20}, {200}, {255}}, 4000, 2)
	if err != nil {
		log.Fatal(err)
	}

	for _, e := range ord.Entries {
		fmt.Println(e.Index, e.CoreDistance, e.Reachability)
	}
	// Output:
	// 0 400 -1
	// 1 400 400
	// 2 3025 -1
	// 3 3025 3025
}

// ExampleResult_Labels demonstrates per-item cluster labels.
func ExampleResult_Labels() {
	points := [][]float64{{200, 0}, {0, 210}, {0, 200}, {0, 255}, {500, 500}}

	res, err := optics.Cluster(context.Background(), points, distance.SquaredL2, optics.Params{
		MaxDistance: 3900,
		MinPoints:   2,
		Xi:          0.1,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Labels())
	// Output: [-1 0 0 0 -1]
}
