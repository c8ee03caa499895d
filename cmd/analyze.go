package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/geo"
	"github.com/sells-group/location-intel/internal/model"
)

var (
	analyzeLat    float64
	analyzeLng    float64
	analyzeRadius int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pt := model.Point{Lat: analyzeLat, Lng: analyzeLng}
		if !geo.InCoverage(pt) {
			return eris.New("coordinates outside coverage area")
		}

		radius := analyzeRadius
		if radius == 0 {
			radius = cfg.Analysis.DefaultRadiusMeters
		}

		env, err := initEnv(ctx, "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		analysis, err := env.Analyzer.Analyze(ctx, pt, radius)
		if err != nil {
			return eris.Wrap(err, "analyze location")
		}

		zap.L().Info("analysis complete",
			zap.Float64("lat", pt.Lat),
			zap.Float64("lng", pt.Lng),
			zap.String("quality", string(analysis.DataQuality)),
			zap.Int("competitors", len(analysis.Competitors)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	},
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeLat, "lat", 0, "latitude (required)")
	analyzeCmd.Flags().Float64Var(&analyzeLng, "lng", 0, "longitude (required)")
	analyzeCmd.Flags().IntVar(&analyzeRadius, "radius", 0, "radius in meters (default from config)")
	_ = analyzeCmd.MarkFlagRequired("lat")
	_ = analyzeCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(analyzeCmd)
}
