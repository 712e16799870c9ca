package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/oracledb"
	"github.com/dbaworks/awr-advisor/internal/orchestrator"
)

func newSnapshotCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture a live top-SQL snapshot from an Oracle instance and analyze it in place",
		Long: `snapshot connects directly to an Oracle instance's dynamic performance
views instead of reading an already-exported AWR/ASH report. By default
it uses the pure-Go go-ora driver; build with -tags cgo_oracle to use the
godror driver against an Oracle Instant Client instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := oracledb.Open(oracledb.Config{
				Host:        cfg.Oracle.Host,
				Port:        cfg.Oracle.Port,
				ServiceName: cfg.Oracle.ServiceName,
				Username:    cfg.Oracle.Username,
				Password:    cfg.Oracle.Password,
				MaxConns:    cfg.Oracle.MaxConns,
				MinConns:    cfg.Oracle.MinConns,
			})
			if err != nil {
				return fmt.Errorf("connect to oracle: %w", err)
			}
			defer db.Close()

			topSQL, err := oracledb.Capture(context.Background(), db, limit)
			if err != nil {
				return fmt.Errorf("capture live snapshot: %w", err)
			}

			env := orchestrator.AnalyzeWorkload(topSQL, len(topSQL), orchestrator.DominantWait{}, orchestrator.ASHContext{}, awrmodel.UnifiedMetrics{IsValid: true})
			renderEnvelope(env)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of top SQL statements to capture by elapsed time")
	return cmd
}
