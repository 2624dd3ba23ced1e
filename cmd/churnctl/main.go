package main

import (
	"fmt"
	"os"

	"churn-prediction-service/internal/adapters/secondary/filesystem"
	"churn-prediction-service/internal/config"
	"churn-prediction-service/internal/core/services"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	jsonOutput      bool
	deploymentRoot  string
	modelPath       string
	featuresPath    string
	predictionsPath string
	strictKeys      bool

	artifacts   *services.ArtifactStore
	predictions *services.PredictionCache
)

var rootCmd = &cobra.Command{
	Use:          "churnctl",
	Short:        "Query precomputed churn predictions from the command line",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlags(cmd); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log.SetOutput(cmd.ErrOrStderr())
		log.SetLevel(log.WarnLevel)
		if level, err := log.ParseLevel(cfg.Logger.Level); err == nil && level >= log.DebugLevel {
			log.SetLevel(level)
		}

		artifacts = services.NewArtifactStore(
			filesystem.NewArtifactReader(cfg.Paths.ModelPath, cfg.Paths.FeaturesPath, cfg.Load.ArtifactMaxBytes),
			nil,
			cfg.Load.Timeout,
		)
		reader := filesystem.NewPredictionReader(cfg.Paths.PredictionsPath, cfg.Predictions.KeyColumn, cfg.Predictions.ProbabilityColumn)
		predictions = services.NewPredictionCache(reader, reader, nil, services.PredictionCacheOptions{
			Timeout:     cfg.Load.Timeout,
			StrictKeys:  cfg.Predictions.StrictKeys,
			LabelColumn: cfg.Predictions.LabelColumn,
		})
		return nil
	},
}

// applyFlags exports explicitly set flags under the keys config.Load reads,
// so a flag wins over both the environment and the config file.
func applyFlags(cmd *cobra.Command) error {
	overrides := []struct {
		flag, key string
	}{
		{"root", "DEPLOYMENT_ROOT"},
		{"model", "MODEL_PATH"},
		{"features", "FEATURES_PATH"},
		{"predictions", "PREDICTIONS_PATH"},
		{"strict-keys", "PREDICTIONS_STRICT_KEYS"},
	}
	for _, o := range overrides {
		f := cmd.Flags().Lookup(o.flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := os.Setenv(o.key, f.Value.String()); err != nil {
			return fmt.Errorf("--%s: %w", o.flag, err)
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&deploymentRoot, "root", "", "deployment root for relative input paths")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "", "classifier artifact path")
	rootCmd.PersistentFlags().StringVar(&featuresPath, "features", "", "feature list artifact path")
	rootCmd.PersistentFlags().StringVar(&predictionsPath, "predictions", "", "predictions CSV path")
	rootCmd.PersistentFlags().BoolVar(&strictKeys, "strict-keys", false, "reject duplicate customer IDs")

	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(modelCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
