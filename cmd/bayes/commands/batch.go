/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: batch.go
Description: Batch command implementation. Answers every query of a batch file with a
pool of workers sharing one engine.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/kleascm/bayes-engine/pkg/batch"
	"github.com/kleascm/bayes-engine/pkg/parser"
	"github.com/spf13/cobra"
)

// RunBatch answers the queries listed in --file
func RunBatch(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		if s.settings.Algorithm == algorithmBoth {
			return fmt.Errorf("batch needs a single algorithm")
		}
		bn, err := loadNetwork(cmd)
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("file")
		workers, _ := cmd.Flags().GetInt("workers")
		stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

		queries, err := parser.LoadBatchFile(path, bn)
		if err != nil {
			return err
		}
		engine, err := s.engine(s.settings.Algorithm)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		pool := batch.NewEngine(engine, &batch.Config{Workers: workers, StopOnError: stopOnError}, s.logger.GetLogger())
		report, runErr := pool.Run(ctx, bn, batch.NewJobs(queries))
		if report != nil {
			if err := s.printer.PrintBatch(report); err != nil {
				return err
			}
		}
		if runErr != nil {
			return runErr
		}
		if report.Stats.Failed > 0 {
			return fmt.Errorf("%d/%d queries failed", report.Stats.Failed, report.Stats.Jobs)
		}
		return nil
	})
}
