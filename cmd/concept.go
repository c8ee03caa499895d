package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/geo"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/internal/report"
)

var (
	conceptLat    float64
	conceptLng    float64
	conceptRadius int
	conceptOut    string
)

var conceptCmd = &cobra.Command{
	Use:   "concept <name>",
	Short: "Check concept viability at a location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		concept := args[0]

		pt := model.Point{Lat: conceptLat, Lng: conceptLng}
		if !geo.InCoverage(pt) {
			return eris.New("coordinates outside coverage area")
		}

		radius := conceptRadius
		if radius == 0 {
			radius = cfg.Analysis.DefaultRadiusMeters
		}

		env, err := initEnv(ctx, "concept")
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Engine.CheckConcept(ctx, concept, pt, radius)
		if err != nil {
			return eris.Wrap(err, "check concept")
		}

		zap.L().Info("concept check complete",
			zap.String("concept", result.Concept),
			zap.Int("viability", result.ViabilityScore),
		)

		if conceptOut != "" {
			if err := report.SaveConcept(conceptOut, result, nil); err != nil {
				return err
			}
			zap.L().Info("report written", zap.String("path", conceptOut))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	conceptCmd.Flags().Float64Var(&conceptLat, "lat", 0, "latitude (required)")
	conceptCmd.Flags().Float64Var(&conceptLng, "lng", 0, "longitude (required)")
	conceptCmd.Flags().IntVar(&conceptRadius, "radius", 0, "radius in meters (default from config)")
	conceptCmd.Flags().StringVar(&conceptOut, "out", "", "write an XLSX report to this path")
	_ = conceptCmd.MarkFlagRequired("lat")
	_ = conceptCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(conceptCmd)
}
