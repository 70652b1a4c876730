/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/caarlos0/ctrlc"
	"github.com/blacktop/appguid/internal/colors"
	"github.com/blacktop/appguid/internal/commands/resolve"
	"github.com/blacktop/appguid/internal/config"
	"github.com/blacktop/appguid/internal/utils"
	"github.com/blacktop/appguid/pkg/report"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("input", "i", "", "iOS full file system image (zip or tar)")
	resolveCmd.Flags().StringP("apps", "a", "", "Apps to resolve: 'all' or '3rd' (3rd party only)")
	resolveCmd.Flags().StringP("output", "o", "", "Output format: 'csv', 'df', 'json' or 'db'")
	resolveCmd.Flags().String("dir", "", "Folder to write output files to (default is the working directory)")
	resolveCmd.Flags().String("db", "", "sqlite path or postgres DSN for the 'db' output")
	resolveCmd.Flags().Bool("ui", false, "Browse the 'df' output in an interactive table")
	resolveCmd.Flags().Bool("progress", false, "Show scan progress")
	resolveCmd.MarkFlagRequired("input")
	resolveCmd.MarkFlagRequired("apps")
	resolveCmd.MarkFlagRequired("output")
	resolveCmd.MarkFlagFilename("input", "zip", "tar", "gz", "tgz", "bz2", "xz")
	resolveCmd.MarkFlagDirname("dir")
	viper.BindPFlag("resolve.input", resolveCmd.Flags().Lookup("input"))
	viper.BindPFlag("resolve.apps", resolveCmd.Flags().Lookup("apps"))
	viper.BindPFlag("resolve.output", resolveCmd.Flags().Lookup("output"))
	viper.BindPFlag("resolve.dir", resolveCmd.Flags().Lookup("dir"))
	viper.BindPFlag("resolve.db", resolveCmd.Flags().Lookup("db"))
	viper.BindPFlag("resolve.ui", resolveCmd.Flags().Lookup("ui"))
	viper.BindPFlag("resolve.progress", resolveCmd.Flags().Lookup("progress"))
}

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:     "resolve",
	Aliases: []string{"r"},
	Short:   "Resolve app GUIDs to app names in an iOS full file system image",
	Example: heredoc.Doc(`
		# Write every app (store and default) to iOS_Apps_<timestamp>.csv
		❯ appguid resolve -i FFS.zip -a all -o csv

		# Print the 3rd party apps of a tar image as a table
		❯ appguid resolve -i FFS.tar.gz -a 3rd -o df

		# Browse the apps in an interactive table
		❯ appguid resolve -i FFS.tar -a all -o df --ui

		# Store the scan in a database
		❯ appguid resolve -i FFS.zip -a all -o db --db 'host=localhost user=dfir dbname=apps'`),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}

		rconf := &resolve.Config{
			Input:       viper.GetString("resolve.input"),
			Apps:        viper.GetString("resolve.apps"),
			Output:      viper.GetString("resolve.output"),
			Dir:         conf.Output.Dir,
			Database:    conf.Database.DSN,
			BatchSize:   conf.Database.BatchSize,
			Styled:      conf.Table.Styled && colors.Enabled(),
			MaxWidth:    conf.Table.MaxWidth,
			Interactive: viper.GetBool("resolve.ui"),
		}
		if dir := viper.GetString("resolve.dir"); dir != "" {
			rconf.Dir = dir
		}
		if dsn := viper.GetString("resolve.db"); dsn != "" {
			rconf.Database = dsn
		}
		if err := rconf.Validate(); err != nil {
			return err
		}

		if fi, err := os.Stat(rconf.Input); err == nil {
			log.WithField("size", humanize.Bytes(uint64(fi.Size()))).Infof("Scanning %s", rconf.Input)
		}

		var p *mpb.Progress
		var bar *mpb.Bar
		if viper.GetBool("resolve.progress") {
			p = mpb.New(mpb.WithWidth(80))
			rconf.Progress = func(done, total int) {
				if bar == nil {
					name := "      "
					bar = p.New(int64(total),
						mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding("-").Rbound("|"),
						mpb.PrependDecorators(
							decor.Name(name, decor.WC{W: len(name), C: decor.DindentRight | decor.DextraSpace}),
							decor.OnComplete(
								decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 4}), "✅ ",
							),
						),
						mpb.AppendDecorators(
							decor.CountersNoUnit("%d/%d"),
							decor.Name(" ] "),
						),
					)
				}
				bar.SetCurrent(int64(done))
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var res *resolve.Result
		done := make(chan struct{})
		if err := ctrlc.Default.Run(ctx, func() error {
			defer close(done)
			var err error
			res, err = resolve.Run(ctx, rconf)
			if p != nil {
				if bar != nil && !bar.Completed() {
					bar.Abort(false)
				}
				p.Wait()
			}
			return err
		}); err != nil {
			if errors.As(err, &ctrlc.ErrorCtrlC{}) {
				log.Warn("Exiting...")
				// stop the scan before it renders any output
				cancel()
				<-done
			}
			return err
		}

		if res.Stats.Failed > 0 {
			utils.Indent(log.Warn, 2)(colors.Warning().Sprintf("Skipped %d unreadable metadata plists", res.Stats.Failed))
		}

		if f, ok := res.Output.(*report.Frame); ok && rconf.Interactive {
			if err := f.Interactive(fmt.Sprintf("%s (%d apps)", rconf.Input, res.Parsed)).Run(); err != nil {
				return fmt.Errorf("failed to run interactive table: %w", err)
			}
		}

		fmt.Printf("%s Parsed %s application names\n", colors.Success().Sprint("Finished!"), colors.Count().Sprint(res.Parsed))
		out := res.Output.String()
		if _, ok := res.Output.(*report.Frame); !ok {
			out = colors.Path().Sprint(out)
		}
		fmt.Printf("%s\n%s\n", colors.Label().Sprint("Out:"), out)

		return nil
	},
}
