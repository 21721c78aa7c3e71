package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/geo"
	"github.com/solix-energy/solix/internal/geocoding/provider"

	_ "github.com/solix-energy/solix/internal/geocoding/google"
	_ "github.com/solix-energy/solix/internal/geocoding/nominatim"
)

func main() {
	var (
		lat   = flag.String("lat", "", "latitude")
		lon   = flag.String("lon", "", "longitude")
		query = flag.String("q", "", "place to search for instead of -lat/-lon")
	)
	flag.Parse()

	if *query == "" && (*lat == "" || *lon == "") {
		flag.Usage()
		os.Exit(2)
	}

	godotenv.Load(".env.local")

	geocoder, err := provider.NewProvider(provider.LoadFromEnv())
	if err != nil {
		log.Fatalf("geocoder: %v", err)
	}
	ctx := context.Background()

	var p geo.Point
	if *query != "" {
		candidates, err := geocoder.Search(ctx, *query)
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		if len(candidates) == 0 {
			log.Fatalf("no results for %q", *query)
		}
		for i, c := range candidates {
			fmt.Printf("%d. %s (%s)\n", i+1, c.DisplayName, c.Point)
		}
		p = candidates[0].Point
	} else {
		p, err = geo.ParsePoint(*lat, *lon)
		if err != nil {
			log.Fatalf("coordinates: %v", err)
		}
	}

	addr, err := geocoder.Reverse(ctx, p)
	if err != nil && !errors.Is(err, provider.ErrNoResults) {
		log.Fatalf("reverse: %v", err)
	}
	fmt.Printf("\nPoint:     %s\n", p)
	fmt.Printf("Names:     %v\n", addr.Names())
	fmt.Printf("District:  %s\n", district.Match(addr.Names()))
}
