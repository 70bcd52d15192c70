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

const patternCompilerID = "development/pattern-matching-compiler"

func init() {
	register(process.Process{
		ID:      patternCompilerID,
		Title:   "Pattern matching compiler development",
		Summary: "Pattern language design, NFA/DFA compilation strategy, matcher implementation and benchmark suite.",
		Inputs: []process.InputDoc{
			{Name: "projectName", Type: "string", Required: true, Description: "Owning project name"},
			{Name: "patternKinds", Type: "[]string", Default: "[glob literal-set]", Description: "Pattern classes the compiler must support"},
		},
		Run: runPatternCompiler,
	})
}

func runPatternCompiler(ctx context.Context, ectx engine.Ctx, in process.Inputs) (*process.Result, error) {
	projectName := in.String("projectName", "project")
	patternKinds := in.Strings("patternKinds", []string{"glob", "literal-set"})

	ectx.Log(slog.LevelInfo, "starting pattern compiler development",
		"project", projectName, "patternKinds", patternKinds)

	base := task.Args{"projectName": projectName, "patternKinds": patternKinds}

	phases := []phase.Phase{
		static("languageDesign", patternLanguageTask, base),
		{
			Key: "compilationStrategy",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				return compilationStrategyTask, task.Args{
					"projectName": projectName,
					"constructs":  vals["languageDesign"].Strings("constructs"),
				}
			},
			After: &phase.Checkpoint{
				Title:       "Review compilation strategy",
				Question:    "Does the automaton strategy meet the latency budget for all pattern classes?",
				ContextKeys: []string{"compilationStrategy"},
			},
		},
		static("matcherImplementation", matcherImplementationTask, base),
		static("benchmarkSuite", matcherBenchmarkTask, base),
		static("documentation", patternCompilerDocsTask, base),
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
			ProcessID: patternCompilerID,
			Timestamp: ectx.Now(),
			Inputs:    in,
		},
		Sections: map[string]any{
			"compilerPlan": map[string]any{
				"patternKinds": patternKinds,
				"phases":       len(phases),
			},
		},
	}, nil
}

var patternLanguageTask = task.Define("pattern-language", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Design the %s pattern language", args.String("projectName")),
		Agent: task.Agent{
			Name: "compiler-engineer",
			Prompt: task.Prompt{
				Role:    "Compiler engineer",
				Task:    "Define the pattern syntax, semantics and complexity guarantees",
				Context: fmt.Sprintf("Pattern classes: %v", args.Strings("patternKinds")),
				Instructions: []string{
					"Enumerate the supported constructs with formal matching semantics",
					"Forbid constructs that break linear-time matching",
					"Define anchoring and case-sensitivity defaults",
				},
				OutputFormat: "JSON with summary, constructs and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"constructs": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}, "constructs"),
		},
		Labels: []string{"pattern-compiler", "language"},
	}
})

var compilationStrategyTask = task.Define("compilation-strategy", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Choose the %s compilation strategy", args.String("projectName")),
		Agent: task.Agent{
			Name: "compiler-engineer",
			Prompt: task.Prompt{
				Role:    "Compiler engineer",
				Task:    "Select and justify the automaton construction per pattern class",
				Context: fmt.Sprintf("Constructs: %v", args.Strings("constructs")),
				Instructions: []string{
					"Compare NFA simulation, lazy DFA and Aho-Corasick for literal sets",
					"Bound compiled automaton size against adversarial patterns",
					"Define the fallback when DFA state budget is exceeded",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"pattern-compiler", "strategy"},
	}
})

var matcherImplementationTask = task.Define("matcher-implementation", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Implement the %s matcher", args.String("projectName")),
		Agent: task.Agent{
			Name: "compiler-engineer",
			Prompt: task.Prompt{
				Role: "Senior software engineer",
				Task: "Implement the compiler and matcher per the chosen strategy",
				Instructions: []string{
					"Compile once, match many: the compiled form must be immutable and shareable",
					"No regression below linear time on any accepted pattern",
					"Property-test equivalence against a reference backtracking matcher",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"pattern-compiler", "implementation"},
	}
})

var matcherBenchmarkTask = task.Define("matcher-benchmark", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Benchmark the %s matcher", args.String("projectName")),
		Agent: task.Agent{
			Name: "performance-engineer",
			Prompt: task.Prompt{
				Role: "Performance engineer",
				Task: "Build the benchmark suite across pattern classes and input shapes",
				Instructions: []string{
					"Include adversarial patterns and pathological inputs",
					"Track compile time separately from match throughput",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"pattern-compiler", "benchmarks"},
	}
})

var patternCompilerDocsTask = task.Define("pattern-compiler-docs", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Document the %s pattern compiler", args.String("projectName")),
		Agent: task.Agent{
			Name: "tech-writer",
			Prompt: task.Prompt{
				Role: "Technical writer",
				Task: "Write the pattern language reference and integration guide",
				Instructions: []string{
					"Document every construct with examples and complexity notes",
					"Include a migration table from common regex idioms",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"pattern-compiler", "docs"},
	}
})
