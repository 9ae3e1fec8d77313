// Profiling:
// go build ./profile/groups
// ./groups -mode=cpu
// go tool pprof -http=":8000" -nodefraction=0.001 ./groups cpu.pprof

package main

import (
	"flag"
	"log"

	"github.com/TheBitDrifter/stockpile"
	"github.com/TheBitDrifter/table"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

type tag struct{}

func main() {
	mode := flag.String("mode", "mem", "profile mode: cpu or mem")
	config := flag.String("config", "", "optional stockpile config file (.toml/.yaml)")
	rounds := flag.Int("rounds", 50, "storages to build")
	iters := flag.Int("iters", 1000, "create/iterate/destroy cycles per storage")
	entities := flag.Int("entities", 1000, "entities per cycle")
	flag.Parse()

	if *config != "" {
		fc, err := stockpile.LoadConfig(*config)
		if err != nil {
			log.Fatal(err)
		}
		if err := stockpile.Config.Apply(fc); err != nil {
			log.Fatal(err)
		}
	}
	logger := stockpile.Config.Logger()

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	}
	run(*rounds, *iters, *entities)
	p.Stop()

	logger.Info("profile written",
		zap.String("mode", *mode),
		zap.Int("rounds", *rounds),
		zap.Int("iters", *iters),
		zap.Int("entities", *entities),
	)
}

func run(rounds, iters, numEntities int) {
	c1 := stockpile.FactoryNewComponent[comp1]()
	c2 := stockpile.FactoryNewComponent[comp2]()
	marker := stockpile.FactoryNewComponent[tag]()

	for range rounds {
		storage := stockpile.Factory.NewStorage(table.Factory.NewSchema())
		group, err := storage.Group(c1, c2, marker)
		if err != nil {
			log.Fatal(err)
		}
		p1, p2 := c1.PoolIn(storage), c2.PoolIn(storage)

		for range iters {
			storage.NewEntities(numEntities, c1, c2)
			half, _ := storage.NewEntities(numEntities/2, c1, c2, marker)

			stockpile.Each2(group, p1, p2, func(_ stockpile.Entity, a *comp1, b *comp2) {
				a.V += b.V
				a.W += b.W
			})

			storage.DestroyEntities(half...)
			storage.DestroyAll()
		}
		storage.Tidy()
	}
}
