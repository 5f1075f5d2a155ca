package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"api-test-engine/internal/config"
	"api-test-engine/internal/extractor"
	"api-test-engine/internal/types"

	"github.com/spf13/cobra"
)

var (
	extractSource     string
	extractController string
	extractOpenAPI    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract and print endpoint descriptors without executing tests",
	RunE: func(cmd *cobra.Command, args []string) error {
		var endpoints []types.EndpointDescriptor

		switch {
		case extractSource != "":
			data, err := os.ReadFile(extractSource)
			if err != nil {
				return fmt.Errorf("failed to read source file: %w", err)
			}
			controller := extractController
			if controller == "" {
				controller = strings.TrimSuffix(filepath.Base(extractSource), filepath.Ext(extractSource))
			}
			endpoints = extractor.New().Extract(string(data), controller)
		case extractOpenAPI:
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			endpoints, err = extractor.NewOpenAPIExtractor(cfg.BaseURL).Extract()
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("either --source or --openapi is required")
		}

		if len(endpoints) == 0 {
			fmt.Println("No endpoints found.")
			return nil
		}
		for _, ep := range endpoints {
			fmt.Printf("%-6s %s\n", ep.Method, ep.Path)
			if ep.Description != "" {
				fmt.Printf("       %s\n", ep.Description)
			}
			for _, p := range ep.Parameters {
				required := ""
				if p.Required {
					required = " (required)"
				}
				fmt.Printf("       %s %s in %s%s\n", p.Type, p.Name, p.In, required)
			}
			if ep.RequestBody != nil {
				fmt.Printf("       body: %s, %d fields\n", ep.RequestBody.TypeName, len(ep.RequestBody.Fields))
			}
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractSource, "source", "", "Path to an annotated controller source file")
	extractCmd.Flags().StringVar(&extractController, "controller", "", "Controller name (defaults to the source file name)")
	extractCmd.Flags().BoolVar(&extractOpenAPI, "openapi", false, "Discover endpoints from the target's OpenAPI document")
	rootCmd.AddCommand(extractCmd)
}
