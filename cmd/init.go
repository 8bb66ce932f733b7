package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mkamal/slicebom/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a slicebom configuration and starter slicer profile",
	Long: `Initialize a directory for the pipeline. Writes a .slicebom.yml with the
default tool configuration and a starter config.ini slicer profile that the
slice stage derives its support variants from.

Existing files are left alone unless --force is given.

Examples:
  slicebom init                   # Initialize the current directory
  slicebom init parts/            # Initialize parts/
  slicebom init --force           # Overwrite existing files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing files")
}

// starterProfile is a minimal slicer profile. The support_material key is
// what the slice stage toggles between its two runs.
const starterProfile = `# Slicer profile consumed by slicebom slice.
layer_height = 0.2
fill_density = 20%
support_material = 1
filament_cost = 2500
slicer_settings = 0.2mm layer, 20% infill, supports=auto
`

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) == 1 {
		targetDir = args[0]
		if err := os.MkdirAll(targetDir, 0755); err != nil {
			return fmt.Errorf("failed to create target directory: %w", err)
		}
	}

	fmt.Printf("Initializing slicebom project in %s\n", targetDir)

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	if err := writeScaffold(filepath.Join(targetDir, ".slicebom.yml"), data); err != nil {
		return err
	}
	if err := writeScaffold(filepath.Join(targetDir, "config.ini"), []byte(starterProfile)); err != nil {
		return err
	}

	fmt.Println("✅ Project initialized")
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Point slicer.profile at your real slicer profile, or edit config.ini")
	fmt.Println("  2. slicebom export <part.ipt>")
	fmt.Println("  3. slicebom slice STEP_Exports/<part>.step")
	fmt.Println("  4. slicebom bom Slicer_Stats/")
	return nil
}

func writeScaffold(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Printf("   - Keeping existing %s (use --force to overwrite)\n", path)
		return nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("   - Created %s\n", path)
	return nil
}
