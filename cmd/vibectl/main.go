package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag  string
	userFlag string
	rootCmd  = &cobra.Command{
		Use:   "vibectl",
		Short: "CLI client for the Vibelink REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Vibelink service base URL")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User ID sent as X-User-ID")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(apiFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(healthCmd)

	var lat, lng, maxDistance float64
	var page, limit int
	nearbyCmd := &cobra.Command{
		Use:   "nearby",
		Short: "List live moments near a point",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNearby(apiFlag, lat, lng, maxDistance, page, limit, os.Stdout)
		},
	}
	nearbyCmd.Flags().Float64Var(&lat, "lat", 0, "Origin latitude (required)")
	nearbyCmd.Flags().Float64Var(&lng, "lng", 0, "Origin longitude (required)")
	nearbyCmd.Flags().Float64Var(&maxDistance, "max-distance", 0, "Radius in meters (server default when omitted)")
	nearbyCmd.Flags().IntVar(&page, "page", 0, "Page number")
	nearbyCmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	_ = nearbyCmd.MarkFlagRequired("lat")
	_ = nearbyCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(nearbyCmd)

	var gridSize float64
	clustersCmd := &cobra.Command{
		Use:   "clusters",
		Short: "Show nearby user clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			return runClusters(apiFlag, userFlag, lat, lng, maxDistance, gridSize, os.Stdout)
		},
	}
	clustersCmd.Flags().Float64Var(&lat, "lat", 0, "Origin latitude (required)")
	clustersCmd.Flags().Float64Var(&lng, "lng", 0, "Origin longitude (required)")
	clustersCmd.Flags().Float64Var(&maxDistance, "max-distance", 0, "Radius in meters (server default when omitted)")
	clustersCmd.Flags().Float64Var(&gridSize, "grid-size", 0, "Grid cell size in meters (server default when omitted)")
	_ = clustersCmd.MarkFlagRequired("lat")
	_ = clustersCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(clustersCmd)

	locationCmd := &cobra.Command{
		Use:   "location",
		Short: "Update the user's live location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			return runUpdateLocation(apiFlag, userFlag, lat, lng, os.Stdout)
		},
	}
	locationCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (required)")
	locationCmd.Flags().Float64Var(&lng, "lng", 0, "Longitude (required)")
	_ = locationCmd.MarkFlagRequired("lat")
	_ = locationCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(locationCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
