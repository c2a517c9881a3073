package cmd

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/GPUOpen-Tools/GPU-Reshape/pkg"
	"github.com/GPUOpen-Tools/GPU-Reshape/pkg/license"
)

var updateLicenseCmd = &cobra.Command{
	Use:   "update-license",
	Short: "Adds or refreshes the license header of every source file",
	Long: `Searches the project for source files and makes sure each one starts with the current license
header. Existing headers are only replaced if they contain the license name, any other leading
comment is kept below the new header.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		flags := cmd.Flags()

		for name, target := range map[string]*string{
			"root":   &cfg.License.Root,
			"config": &cfg.License.Config,
		} {
			if flags.Changed(name) {
				value, err := flags.GetString(name)
				if err != nil {
					return err
				}
				*target = value
			}
		}

		if flags.Changed("base-year") {
			year, err := flags.GetInt("base-year")
			if err != nil {
				return err
			}
			cfg.License.BaseYear = year
		}

		dry, err := flags.GetBool("dry")
		if err != nil {
			return err
		}

		licenseCfg := license.DefaultConfig(time.Now())
		licenseCfg.BaseYear = cfg.License.BaseYear
		if cfg.License.Config != "" {
			err = license.LoadConfig(licenseCfg, cfg.License.Config)
			if err != nil {
				return err
			}

			if flags.Changed("base-year") {
				licenseCfg.BaseYear = cfg.License.BaseYear
			}
		}

		err = licenseCfg.Validate()
		if err != nil {
			return err
		}

		root := cfg.License.Root
		if root == "" {
			root, err = pkg.GetProjectRoot()
			if err != nil {
				return err
			}
		}

		stamper := license.NewStamper(licenseCfg, *pkg.Log(ctx))
		stamper.Dry = dry

		pkg.PrintTask("Updating license headers in " + root)
		summary, err := stamper.Run(ctx, root)
		if err != nil {
			return err
		}

		if len(summary.Failed) > 0 {
			for _, path := range summary.Failed {
				pkg.PrintError(path)
			}
			return eris.Errorf("Could not detect the encoding of %d files", len(summary.Failed))
		}

		if dry {
			pkg.PrintSubtask(fmt.Sprintf("%d files would be updated, %d up to date", summary.WouldUpdate, summary.UpToDate))
		} else {
			pkg.PrintSubtask(fmt.Sprintf("%d files updated, %d up to date", summary.Updated, summary.UpToDate))
		}
		return nil
	},
}

func init() {
	updateLicenseCmd.Flags().String("root", "", "directory the search globs are relative to (default: the project root)")
	updateLicenseCmd.Flags().BoolP("dry", "n", false, "only report the files that would change")
	updateLicenseCmd.Flags().Int("base-year", license.DefaultBaseYear, "first year of the copyright range")
	updateLicenseCmd.Flags().String("config", "", "YAML file overriding the license tables")

	rootCmd.AddCommand(updateLicenseCmd)
}
