package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/integrity"
	"github.com/dbaworks/awr-advisor/internal/pipeline"
	"github.com/dbaworks/awr-advisor/internal/unifiedmetrics"
	"github.com/dbaworks/awr-advisor/pkg/logger"
)

func newAnalyzeCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "analyze <workspace-dir>",
		Short: "Analyze every AWR/ASH HTML report in a workspace directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := args[0]

			log := logger.NewDevelopment()
			if !verbose {
				log = logger.New()
			}

			if _, err := loadConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			files, err := readWorkspaceHTML(workspace)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .html reports found in %s", workspace)
			}

			bundle, err := pipeline.BuildBundle(workspace, files)
			if err != nil {
				log.Warn("bundle built with errors", logger.Error(err))
			}

			ws := integrity.Workspace{
				Path:             workspace,
				RequestingUID:    os.Getuid(),
				HasRequestingUID: true,
			}

			env, err := pipeline.Analyze(bundle, ws, unifiedmetrics.NewCalculator())
			if err != nil {
				renderViolations(env)
				return err
			}

			renderEnvelope(env)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "use development (console) logging")
	return cmd
}

func readWorkspaceHTML(dir string) ([]pipeline.SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read workspace %q: %w", dir, err)
	}
	var files []pipeline.SourceFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".html") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		files = append(files, pipeline.SourceFile{Name: e.Name(), HTML: data})
	}
	return files, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	highStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	mediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case "CRITICAL":
		return criticalStyle
	case "HIGH":
		return highStyle
	case "MEDIUM":
		return mediumStyle
	default:
		return dimStyle
	}
}

func renderEnvelope(env awrmodel.Envelope) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Workload: %s", env.WorkloadSummary)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d of %d SQL statements flagged for review", env.ProblematicCount, env.TotalAnalyzed)))
	fmt.Println()

	for _, f := range env.ProblematicSQLFindings {
		style := severityStyle(f.Severity)
		fmt.Println(style.Render(fmt.Sprintf("[%s] %s (score %.1f)", f.Severity, f.SQLID, f.PriorityScore)))
		fmt.Println(dimStyle.Render("  " + f.ProblemSummary))
		fmt.Println("  " + f.Recommendations.WhatDBAShouldDoNext)
		fmt.Println()
	}

	fmt.Println(titleStyle.Render("Conclusion"))
	fmt.Println(env.DBAFinalConclusion)
}

func renderViolations(env awrmodel.Envelope) {
	fmt.Println(criticalStyle.Render("Workspace failed integrity validation:"))
	for _, v := range env.DataIntegrityViolations {
		fmt.Println("  - " + v)
	}
}
