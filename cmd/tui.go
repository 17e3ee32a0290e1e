package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/llm"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/tasks"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	// Ollama may simply not be running yet
	if o, ok := rt.provider.(*llm.Ollama); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := o.EnsureRunning(ctx); err != nil {
			rt.log.Warn("ollama not available", zap.Error(err))
		}
		cancel()
	}

	return tui.Run(tui.RunOpts{
		Cfg:          rt.cfg,
		Orchestrator: rt.orch,
		Planner:      tasks.NewPlanner(nil, rt.provider),
		LLM:          rt.provider,
		Logger:       rt.log,
		City:         rt.city(),
		Version:      version,
	})
}
