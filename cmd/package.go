package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GPUOpen-Tools/GPU-Reshape/pkg"
	"github.com/GPUOpen-Tools/GPU-Reshape/pkg/packaging"
)

var packageCmd = &cobra.Command{
	Use:   "package NAME...",
	Short: "Assembles package folders from the build output",
	Long: `Copies the build output of each named configuration (i.e. Release or x64/Debug) into a fresh
package folder. Ignored files are skipped, debug symbols are collected separately and every
configured sub-project is published into the package.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		log := pkg.Log(ctx)
		flags := cmd.Flags()

		for name, target := range map[string]*string{
			"build-root":   &cfg.Package.BuildRoot,
			"package-root": &cfg.Package.PackageRoot,
			"rules":        &cfg.Package.Rules,
			"platform":     &cfg.Package.Platform,
		} {
			if flags.Changed(name) {
				value, err := flags.GetString(name)
				if err != nil {
					return err
				}
				*target = value
			}
		}

		noPublish, err := flags.GetBool("no-publish")
		if err != nil {
			return err
		}

		dryPublish, err := flags.GetBool("dry-publish")
		if err != nil {
			return err
		}

		noProgress, err := flags.GetBool("no-progress")
		if err != nil {
			return err
		}

		rules := packaging.DefaultRules()
		if cfg.Package.Rules != "" {
			err = packaging.LoadRules(rules, cfg.Package.Rules)
			if err != nil {
				return err
			}
		}

		if !cfg.Package.Symbols {
			rules.SymbolMarker = ""
		}

		projectRoot, err := pkg.GetProjectRoot()
		if err != nil {
			log.Debug().Err(err).Msg("using the working directory as project root")
			projectRoot, err = os.Getwd()
			if err != nil {
				return err
			}
		}

		packager := &packaging.Packager{
			BuildRoot:   cfg.Package.BuildRoot,
			PackageRoot: cfg.Package.PackageRoot,
			ProjectRoot: projectRoot,
			Rules:       rules,
			Logger:      *log,
		}

		if !noProgress && os.Getenv("CI") != "true" {
			packager.Progress = os.Stderr
		}

		if !noPublish {
			packager.Publisher = &packaging.ShellPublisher{
				Dir:      projectRoot,
				Platform: cfg.Package.Platform,
				Dry:      dryPublish,
				Logger:   *log,
			}
		}

		pkg.PrintTask("Packaging " + strings.Join(args, ", "))
		err = packager.Run(ctx, args)
		if err != nil {
			return err
		}

		pkg.PrintSubtask("Done")
		return nil
	},
}

func init() {
	packageCmd.Flags().String("build-root", "Bin", "directory containing the build output")
	packageCmd.Flags().String("package-root", "Package", "directory receiving the packages")
	packageCmd.Flags().String("rules", "", "YAML file overriding the packaging rules")
	packageCmd.Flags().String("platform", packaging.DefaultPlatform, "runtime identifier passed to publish commands")
	packageCmd.Flags().Bool("no-publish", false, "skip publishing sub-projects")
	packageCmd.Flags().Bool("dry-publish", false, "only print the publish commands")
	packageCmd.Flags().Bool("no-progress", false, "hide progress bars")

	rootCmd.AddCommand(packageCmd)
}
