package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MaTriXy/babysitter-sub001/internal/config"
	"github.com/MaTriXy/babysitter-sub001/internal/engine"
	vlog "github.com/MaTriXy/babysitter-sub001/internal/log"
	"github.com/MaTriXy/babysitter-sub001/internal/process"
	"github.com/MaTriXy/babysitter-sub001/internal/project"
	"github.com/MaTriXy/babysitter-sub001/internal/run"
)

// runProcess is the shared entry point for the run command and is what
// the serve handler reuses, minus the console gate.
func runProcess(ctx context.Context, p process.Process, inputs process.Inputs, dispatcherOverride string, autoApprove bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if dispatcherOverride != "" {
		cfg.Dispatcher = dispatcherOverride
	}
	if autoApprove {
		cfg.Approval = "auto"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logFile := openLogFile()
	var logWriter io.Writer
	if logFile != nil {
		logWriter = logFile
		defer logFile.Close()
	}
	vlog.Init(cfg.LogLevel, logWriter)

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}

	r, err := run.New(p.ID, inputs)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}

	if gitInfo, gitErr := project.CollectGitInfo(); gitErr == nil {
		if err := r.SetGitInfo(gitInfo.Branch, gitInfo.Commit); err != nil {
			vlog.Warn("could not record git info", "err", err)
		}
	} else {
		vlog.Debug("no git info for run", "err", gitErr)
	}

	display := engine.NewDisplay()
	display.Header(p.ID, p.Title)

	rt := &engine.Runtime{
		Dispatcher: dispatcher,
		Gate:       buildGate(cfg),
		Recorder:   r,
		Display:    display,
	}

	res, err := p.Run(ctx, rt, inputs)
	if err != nil {
		display.Failed(err)
		if failErr := r.Fail(err.Error()); failErr != nil {
			vlog.Warn("could not persist run failure", "err", failErr)
		}
		return err
	}

	if err := r.WriteJSON("result.json", res); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	if err := r.Complete(); err != nil {
		return fmt.Errorf("finalizing run: %w", err)
	}

	display.Summary(len(res.Artifacts), r.Meta.TotalCost, time.Duration(res.Duration)*time.Millisecond)
	fmt.Printf("\nRun saved to %s\n", r.Dir)

	if err := run.Prune(cfg.Runs.KeepLast); err != nil {
		vlog.Warn("could not prune old runs", "err", err)
	}
	return nil
}

func buildDispatcher(cfg *config.Config) (engine.Dispatcher, error) {
	switch cfg.Dispatcher {
	case "stub":
		return engine.StubDispatcher{}, nil
	case "script":
		timeout, err := cfg.ScriptTimeout()
		if err != nil {
			return nil, err
		}
		return &engine.ScriptDispatcher{
			Command: cfg.Script.Command,
			Args:    cfg.Script.Args,
			Timeout: timeout,
		}, nil
	}
	return nil, fmt.Errorf("unknown dispatcher %q", cfg.Dispatcher)
}

func buildGate(cfg *config.Config) engine.Gate {
	if cfg.Approval == "console" {
		return &engine.ConsoleGate{In: os.Stdin, Out: os.Stdout}
	}
	return engine.AutoGate{}
}

func openLogFile() *os.File {
	if err := os.MkdirAll(run.BaseDir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(run.BaseDir+"/babysitter.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return f
}
