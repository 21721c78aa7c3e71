package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/solix-energy/solix/internal/analysis"
	"github.com/solix-energy/solix/internal/config"
	"github.com/solix-energy/solix/internal/dashboard"
	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/form"
	"github.com/solix-energy/solix/internal/geocoding/provider"

	_ "github.com/solix-energy/solix/internal/geocoding/google"
	_ "github.com/solix-energy/solix/internal/geocoding/nominatim"
)

func main() {
	var (
		lat   = flag.Float64("lat", 0, "roof latitude")
		lon   = flag.Float64("lon", 0, "roof longitude")
		query = flag.String("q", "", "place to search for instead of -lat/-lon")
		bill  = flag.String("bill", "", "monthly electricity bill in LKR")
		phase = flag.String("phase", "Single", "connection phase: Single or Three")
		dist  = flag.String("district", "", "override the detected district")
		image = flag.String("image", "", "optional roof photo")
	)
	flag.Parse()

	if *bill == "" || (*query == "" && *lat == 0 && *lon == 0) {
		flag.Usage()
		os.Exit(2)
	}

	godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	geocoder, err := provider.NewProvider(provider.LoadFromEnv())
	if err != nil {
		log.Fatalf("geocoder: %v", err)
	}

	s := dashboard.NewSession("cli", dashboard.Deps{
		Geocoder:        geocoder,
		Classifier:      district.NewClassifier(geocoder),
		Analyzer:        analysis.NewClient(cfg.Analysis.URL, cfg.Analysis.Timeout()),
		Rules:           cfg.FormRules(),
		DefaultPoint:    cfg.DefaultPoint(),
		ClassifyTimeout: cfg.ClassifyTimeout(),
	})
	ctx := context.Background()

	in := inputs{
		query:    *query,
		lat:      *lat,
		lon:      *lon,
		district: *dist,
		bill:     *bill,
		phase:    *phase,
		image:    *image,
	}
	if err := fill(ctx, s, in); err != nil {
		log.Fatal(err)
	}

	loc := s.Store.Snapshot()
	fmt.Printf("Location: %s (%s, %s)\n", loc.Point, loc.District, loc.Classification)

	res, err := s.Submit(ctx)
	if err != nil {
		log.Fatalf("analysis: %s", analysis.UserMessage(err))
	}

	r := res.FinancialReport
	fmt.Printf("Roof area:          %.1f m² (%d panels detected)\n", res.RoofAnalysis.TotalAreaM2, res.RoofAnalysis.DetectionCount)
	if res.RoofAnalysis.IsEstimated {
		fmt.Printf("                    estimated: %s\n", res.RoofAnalysis.EstimationReason)
	}
	fmt.Printf("Recommended system: %.2f kW\n", r.RecommendedSystemKW)
	fmt.Printf("Monthly generation: %.0f kWh\n", r.MonthlyGenerationKWh)
	fmt.Printf("Investment:         %.0f LKR\n", r.TotalInvestmentLKR)
	fmt.Printf("Payback:            %.1f years\n", r.PaybackPeriodYears)
	fmt.Printf("Loan installment:   %.0f LKR/month\n", r.LoanInstallment)
	if r.Note != "" {
		fmt.Printf("Note:               %s\n", r.Note)
	}
	fmt.Printf("Report:             %s\n", res.ReportURL)
}

type inputs struct {
	query    string
	lat, lon float64
	district string
	bill     string
	phase    string
	image    string
}

// fill places the pin and fills the form of s from the command line.
func fill(ctx context.Context, s *dashboard.Session, in inputs) error {
	var err error
	if in.query != "" {
		_, err = s.Resolver.OnSearch(ctx, in.query)
	} else {
		_, err = s.Resolver.OnManualPin(ctx, in.lat, in.lon)
	}
	if err != nil {
		return fmt.Errorf("location: %w", err)
	}
	s.Resolver.Wait()

	if in.district != "" {
		d, err := district.Parse(in.district)
		if err != nil {
			return fmt.Errorf("district: %w", err)
		}
		if err := s.Resolver.SelectDistrict(d); err != nil {
			return fmt.Errorf("district: %w", err)
		}
	}

	s.Form.SetBill(in.bill)
	p, err := form.ParsePhase(in.phase)
	if err != nil {
		return fmt.Errorf("phase: %w", err)
	}
	if err := s.Form.SetPhase(p); err != nil {
		return fmt.Errorf("phase: %w", err)
	}

	if in.image != "" {
		data, err := os.ReadFile(in.image)
		if err != nil {
			return fmt.Errorf("image: %w", err)
		}
		s.Form.SetImage(filepath.Base(in.image), data)
	}
	return nil
}
