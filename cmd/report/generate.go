package report

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/output"
	"github.com/klytics/santekit/internal/progress"
	rpt "github.com/klytics/santekit/internal/report"
)

func newGenerateCmd() *cobra.Command {
	var (
		flags       inputFlags
		outputPath  string
		extractPath string
		format      string
		logo        string
		insurerLogo string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the statistics report of a contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			job, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				job.Output = outputPath
			}
			if cmd.Flags().Changed("extract") {
				job.Extract = extractPath
			}
			if cmd.Flags().Changed("format") {
				job.Format = format
			}
			if cmd.Flags().Changed("logo") {
				job.Logo = logo
			}
			if cmd.Flags().Changed("insurer-logo") {
				job.InsurerLogo = insurerLogo
			}
			if err := check(job); err != nil {
				return err
			}

			opts, err := Options(cfg, job)
			if err != nil {
				return err
			}
			bar := progress.NewSteps("Building report", rpt.Steps...)
			opts.Progress = bar.Step

			result, err := rpt.Generate(cmd.Context(), opts)
			if err != nil {
				bar.Abort()
				return err
			}
			bar.Finish(fmt.Sprintf("Report written → %s", result.OutputPath))
			log := zerolog.Ctx(cmd.Context())
			for _, t := range bar.Timings() {
				log.Debug().Str("step", t.Step).Dur("elapsed", t.Elapsed).Msg("build step")
			}

			if jsonFlag(cmd) {
				return output.PrintJSON("report generate", result)
			}
			PrintResult(result)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: <insurer>_<client>_rapport_sante.<format>)")
	cmd.Flags().StringVar(&extractPath, "extract", "", "Also write the filtered DETAIL workbook to this file")
	cmd.Flags().StringVar(&format, "format", "", "Output format: pdf | html (default from config)")
	cmd.Flags().StringVar(&logo, "logo", "", "Company logo (cover page and running header)")
	cmd.Flags().StringVar(&insurerLogo, "insurer-logo", "", "Insurer logo (cover page)")

	return cmd
}

// PrintResult prints a generation summary for humans.
func PrintResult(result *rpt.GenerateResult) {
	bold := color.New(color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("Report generated → %s\n", bold(result.OutputPath))
	fmt.Printf("  Pages:        %d\n", result.Pages)
	fmt.Printf("  Claim lines:  %d\n", result.ClaimRows)
	fmt.Printf("  Claims ratio: %s\n", result.Ratio)
	if result.Period != "" {
		fmt.Printf("  Period:       %s\n", result.Period)
	}
	if result.ExtractPath != "" {
		fmt.Printf("  Extract:      %s\n", result.ExtractPath)
	}
	if len(result.Warnings) > 0 {
		fmt.Printf("\n%s\n", yellow(fmt.Sprintf("%d warning(s):", len(result.Warnings))))
		for _, w := range result.Warnings {
			fmt.Printf("  %s %s\n", yellow("!"), w)
		}
	}
}
