package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MaTriXy/babysitter-sub001/internal/engine"
	"github.com/MaTriXy/babysitter-sub001/internal/phase"
	"github.com/MaTriXy/babysitter-sub001/internal/process"
	"github.com/MaTriXy/babysitter-sub001/internal/task"
)

const connectionPoolID = "development/connection-pool"

func init() {
	register(process.Process{
		ID:      connectionPoolID,
		Title:   "Connection pool development",
		Summary: "Design, implementation and validation of a connection pool: sizing policy, health checking, acquisition semantics and load testing.",
		Inputs: []process.InputDoc{
			{Name: "projectName", Type: "string", Required: true, Description: "Owning project name"},
			{Name: "backend", Type: "string", Default: "postgres", Description: "Pooled resource kind (postgres, redis, http, grpc)"},
			{Name: "language", Type: "string", Default: "go", Description: "Implementation language"},
		},
		Run: runConnectionPool,
	})
}

func runConnectionPool(ctx context.Context, ectx engine.Ctx, in process.Inputs) (*process.Result, error) {
	projectName := in.String("projectName", "project")
	backend := in.String("backend", "postgres")
	language := in.String("language", "go")

	ectx.Log(slog.LevelInfo, "starting connection pool development",
		"project", projectName, "backend", backend, "language", language)

	base := task.Args{"projectName": projectName, "backend": backend, "language": language}

	phases := []phase.Phase{
		static("requirements", poolRequirementsTask, base),
		{
			Key: "design",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				return poolDesignTask, task.Args{
					"projectName": projectName,
					"backend":     backend,
					"workloads":   vals["requirements"].Strings("workloads"),
				}
			},
			After: &phase.Checkpoint{
				Title:       "Review pool design",
				Question:    fmt.Sprintf("Do the sizing and lifecycle policies fit %s's workload profile?", projectName),
				ContextKeys: []string{"requirements", "design"},
			},
		},
		static("healthChecking", poolHealthCheckTask, base),
		static("acquisitionPolicy", poolAcquisitionTask, base),
		{
			Key: "implementation",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				return poolImplementationTask, task.Args{
					"projectName": projectName,
					"backend":     backend,
					"language":    language,
					"maxSize":     vals["design"].String("maxSize"),
				}
			},
		},
		// The source process declared two colliding validationTask
		// factories; they are distinct concerns and get distinct names.
		static("behaviorValidation", poolBehaviorValidationTask, base),
		static("loadValidation", poolLoadValidationTask, base),
		static("testSuite", poolTestSuiteTask, base),
		static("documentation", poolDocsTask, base),
	}

	runner := &phase.Runner{Ctx: ectx}
	out, err := runner.Run(ctx, phases)
	if err != nil {
		return nil, err
	}

	return &process.Result{
		Success:   true,
		Artifacts: out.Artifacts,
		Duration:  out.Duration.Milliseconds(),
		Metadata: process.Metadata{
			ProcessID: connectionPoolID,
			Timestamp: ectx.Now(),
			Inputs:    in,
		},
		Sections: map[string]any{
			"poolPlan": map[string]any{
				"backend":  backend,
				"language": language,
				"phases":   len(phases),
			},
		},
	}, nil
}

var poolRequirementsTask = task.Define("pool-requirements", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Profile pooling requirements for %s", args.String("projectName")),
		Agent: task.Agent{
			Name: "systems-engineer",
			Prompt: task.Prompt{
				Role:    "Senior systems engineer",
				Task:    "Characterize the workloads the pool must serve",
				Context: fmt.Sprintf("Backend: %s", args.String("backend")),
				Instructions: []string{
					"Gather peak and steady-state concurrency per workload",
					"Record backend connection limits and handshake cost",
					"Identify latency-sensitive versus throughput workloads",
				},
				OutputFormat: "JSON with summary, workloads and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"workloads": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}, "workloads"),
		},
		Labels: []string{"connection-pool", "requirements"},
	}
})

var poolDesignTask = task.Define("pool-design", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Design the %s connection pool", args.String("projectName")),
		Agent: task.Agent{
			Name: "systems-engineer",
			Prompt: task.Prompt{
				Role:    "Senior systems engineer",
				Task:    "Design pool sizing, lifecycle and eviction policy",
				Context: fmt.Sprintf("Workloads: %v", args.Strings("workloads")),
				Instructions: []string{
					"Derive min/max size from workload concurrency and backend limits",
					"Define idle timeout, max lifetime and eviction ordering",
					"Specify warm-up behavior and shrink strategy under load drop",
					"State the fairness model for waiters",
				},
				OutputFormat: "JSON with summary, maxSize and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"maxSize": map[string]any{"type": "string"},
			}),
		},
		Labels: []string{"connection-pool", "design"},
	}
})

var poolHealthCheckTask = task.Define("pool-health-check", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Design health checking for the %s pool", args.String("projectName")),
		Agent: task.Agent{
			Name: "systems-engineer",
			Prompt: task.Prompt{
				Role: "Senior systems engineer",
				Task: "Define connection liveness validation and failure handling",
				Instructions: []string{
					"Choose check-on-borrow vs background sweeping and justify",
					"Define the backend-specific liveness probe",
					"Specify circuit behavior when the backend is fully down",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"connection-pool", "health"},
	}
})

var poolAcquisitionTask = task.Define("pool-acquisition", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Define acquisition semantics for the %s pool", args.String("projectName")),
		Agent: task.Agent{
			Name: "systems-engineer",
			Prompt: task.Prompt{
				Role: "Senior systems engineer",
				Task: "Specify acquire/release semantics under contention",
				Instructions: []string{
					"Acquire must accept a deadline and fail fast when exceeded",
					"Define behavior at max size: queue, spill or reject",
					"Guarantee release is idempotent and safe from finalizers",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"connection-pool", "acquisition"},
	}
})

var poolImplementationTask = task.Define("pool-implementation", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Implement the %s connection pool in %s", args.String("projectName"), args.String("language")),
		Agent: task.Agent{
			Name: "pool-developer",
			Prompt: task.Prompt{
				Role:    "Senior software engineer",
				Task:    "Implement the designed pool as a library",
				Context: fmt.Sprintf("Max size: %s", args.String("maxSize")),
				Instructions: []string{
					"Implement exactly the designed sizing and eviction policies",
					"No locks held across backend I/O",
					"Expose pool gauges: in-use, idle, waiters, acquire latency",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"connection-pool", "implementation"},
	}
})

var poolBehaviorValidationTask = task.Define("pool-behavior-validation", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Validate %s pool behavior", args.String("projectName")),
		Agent: task.Agent{
			Name: "qa-engineer",
			Prompt: task.Prompt{
				Role: "QA engineer",
				Task: "Verify functional pool behavior against the design",
				Instructions: []string{
					"Exercise acquire deadlines, release idempotency and eviction order",
					"Kill backend connections mid-use and assert recovery",
					"Verify no leak after repeated acquire/release cycles",
				},
				OutputFormat: "JSON with summary, findings and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"findings": map[string]any{"type": "array"},
			}),
		},
		Labels: []string{"connection-pool", "validation"},
	}
})

var poolLoadValidationTask = task.Define("pool-load-validation", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Load test the %s pool", args.String("projectName")),
		Agent: task.Agent{
			Name: "performance-engineer",
			Prompt: task.Prompt{
				Role: "Performance engineer",
				Task: "Validate the pool under saturation and churn",
				Instructions: []string{
					"Drive load past max size and measure waiter latency distribution",
					"Run a churn scenario with short-lived bursts",
					"Compare throughput against a no-pool baseline",
				},
				OutputFormat: "JSON with summary, findings and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"findings": map[string]any{"type": "array"},
			}),
		},
		Labels: []string{"connection-pool", "load-test"},
	}
})

var poolTestSuiteTask = task.Define("pool-test-suite", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Build the %s pool test suite", args.String("projectName")),
		Agent: task.Agent{
			Name: "qa-engineer",
			Prompt: task.Prompt{
				Role: "QA engineer",
				Task: "Turn the validation scenarios into a repeatable automated suite",
				Instructions: []string{
					"Make concurrency tests deterministic with injected clocks",
					"Gate merges on the leak and deadline tests",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"connection-pool", "tests"},
	}
})

var poolDocsTask = task.Define("pool-docs", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Document the %s connection pool", args.String("projectName")),
		Agent: task.Agent{
			Name: "tech-writer",
			Prompt: task.Prompt{
				Role: "Technical writer",
				Task: "Write the pool tuning guide and operational runbook",
				Instructions: []string{
					"Document every tunable with its workload rationale",
					"Include an incident playbook for pool exhaustion",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"connection-pool", "docs"},
	}
})
