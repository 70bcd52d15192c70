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

const binaryProtocolID = "development/binary-protocol-parser"

func init() {
	register(process.Process{
		ID:      binaryProtocolID,
		Title:   "Binary protocol parser development",
		Summary: "Protocol analysis, parser state machine design, per-language parser implementation, fuzzing and conformance suites.",
		Inputs: []process.InputDoc{
			{Name: "protocolName", Type: "string", Required: true, Description: "Name of the binary protocol"},
			{Name: "specSource", Type: "string", Description: "Reference document or capture set describing the wire format"},
			{Name: "languages", Type: "[]string", Default: "[go]", Description: "Target implementation languages, one parser task each"},
		},
		Run: runBinaryProtocolParser,
	})
}

func runBinaryProtocolParser(ctx context.Context, ectx engine.Ctx, in process.Inputs) (*process.Result, error) {
	protocolName := in.String("protocolName", "protocol")
	specSource := in.String("specSource", "")
	languages := in.Strings("languages", []string{"go"})

	ectx.Log(slog.LevelInfo, "starting binary protocol parser development",
		"protocol", protocolName, "languages", languages)

	base := task.Args{"protocolName": protocolName, "specSource": specSource}

	phases := []phase.Phase{
		static("protocolAnalysis", protocolAnalysisTask, base),
		{
			Key: "messageCatalog",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				return messageCatalogTask, task.Args{
					"protocolName": protocolName,
					"layers":       vals["protocolAnalysis"].Strings("layers"),
				}
			},
		},
		{
			Key: "stateMachine",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				return parserStateMachineTask, task.Args{
					"protocolName": protocolName,
					"messages":     vals["messageCatalog"].Strings("messages"),
				}
			},
			After: &phase.Checkpoint{
				Title:       "Review parser state machine",
				Question:    fmt.Sprintf("Is the %s parser state machine complete before implementation fans out?", protocolName),
				ContextKeys: []string{"stateMachine"},
			},
		},
		{
			Key: "framing",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				return framingStrategyTask, task.Args{
					"protocolName": protocolName,
					"states":       vals["stateMachine"].Strings("states"),
				}
			},
		},
		{
			Key: "implementation",
			FanOut: func(vals phase.Values) []engine.Call {
				states := vals["stateMachine"].Strings("states")
				calls := make([]engine.Call, 0, len(languages))
				for _, lang := range languages {
					calls = append(calls, engine.Call{
						Def: parserImplementationTask,
						Args: task.Args{
							"protocolName": protocolName,
							"language":     lang,
							"states":       states,
						},
					})
				}
				return calls
			},
		},
		static("fuzzHarness", fuzzHarnessTask, base),
		static("conformanceSuite", conformanceSuiteTask, base),
		static("documentation", protocolDocsTask, base),
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
			ProcessID: binaryProtocolID,
			Timestamp: ectx.Now(),
			Inputs:    in,
		},
		Sections: map[string]any{
			"parserPlan": map[string]any{
				"protocol":  protocolName,
				"languages": languages,
				"phases":    len(phases),
			},
		},
	}, nil
}

var protocolAnalysisTask = task.Define("protocol-analysis", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Analyze the %s wire format", args.String("protocolName")),
		Agent: task.Agent{
			Name: "protocol-engineer",
			Prompt: task.Prompt{
				Role:    "Protocol reverse engineer",
				Task:    "Characterize the wire format: layering, endianness, length fields and versioning",
				Context: args.String("specSource"),
				Instructions: []string{
					"Identify framing: length-prefixed, delimiter-based or fixed-size records",
					"Document endianness and alignment per field family",
					"List the protocol layers and version negotiation rules",
					"Note ambiguities that need capture-based confirmation",
				},
				OutputFormat: "JSON with summary, layers and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"layers": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}, "layers"),
		},
		Labels: []string{"binary-protocol", "analysis"},
	}
})

var messageCatalogTask = task.Define("message-catalog", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Catalog %s message types", args.String("protocolName")),
		Agent: task.Agent{
			Name: "protocol-engineer",
			Prompt: task.Prompt{
				Role:    "Protocol reverse engineer",
				Task:    "Enumerate every message type with its field layout",
				Context: fmt.Sprintf("Layers: %v", args.Strings("layers")),
				Instructions: []string{
					"Give each message a stable identifier and direction",
					"Describe field offsets, types and optionality",
					"Mark messages that embed other messages",
				},
				OutputFormat: "JSON with summary, messages and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"messages": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}, "messages"),
		},
		Labels: []string{"binary-protocol", "catalog"},
	}
})

var parserStateMachineTask = task.Define("parser-state-machine", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Design the %s parser state machine", args.String("protocolName")),
		Agent: task.Agent{
			Name: "protocol-engineer",
			Prompt: task.Prompt{
				Role:    "Systems engineer",
				Task:    "Design an incremental parser state machine that tolerates partial reads",
				Context: fmt.Sprintf("Messages: %v", args.Strings("messages")),
				Instructions: []string{
					"Name each state and the byte conditions that transition out of it",
					"Every state must handle truncated input by suspending, not failing",
					"Define the error state and resynchronization strategy",
					"Bound all buffers; reject length fields beyond the configured maximum",
				},
				OutputFormat: "JSON with summary, states, transitions and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"states":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"transitions": map[string]any{"type": "array"},
			}, "states"),
		},
		Labels: []string{"binary-protocol", "state-machine"},
	}
})

var framingStrategyTask = task.Define("framing-strategy", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Define %s framing and buffering strategy", args.String("protocolName")),
		Agent: task.Agent{
			Name: "protocol-engineer",
			Prompt: task.Prompt{
				Role:    "Systems engineer",
				Task:    "Specify how frames are accumulated from a byte stream ahead of the state machine",
				Context: fmt.Sprintf("Parser states: %v", args.Strings("states")),
				Instructions: []string{
					"Choose ring buffer vs grow-and-compact and justify the bound",
					"Define the contract between framer and state machine",
					"Cover pathological inputs: one byte at a time, giant frames",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"binary-protocol", "framing"},
	}
})

var parserImplementationTask = task.Define("parser-implementation", func(args task.Args, tc task.Context) task.Spec {
	lang := args.String("language")
	return task.Spec{
		Title: fmt.Sprintf("Implement the %s parser in %s", args.String("protocolName"), lang),
		Agent: task.Agent{
			Name: "parser-developer",
			Prompt: task.Prompt{
				Role:    "Senior software engineer",
				Task:    fmt.Sprintf("Implement the designed state machine as an idiomatic %s parser library", lang),
				Context: fmt.Sprintf("States: %v", args.Strings("states")),
				Instructions: []string{
					"Follow the state machine design exactly; no shortcut parsing",
					"Expose a push-style Feed(bytes) API returning complete messages",
					"No allocations proportional to attacker-controlled lengths",
					"Ship unit tests per state transition",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"binary-protocol", "implementation", lang},
	}
})

var fuzzHarnessTask = task.Define("fuzz-harness", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Build a fuzz harness for the %s parser", args.String("protocolName")),
		Agent: task.Agent{
			Name: "security-engineer",
			Prompt: task.Prompt{
				Role: "Security engineer",
				Task: "Create coverage-guided fuzz targets for the parser entry points",
				Instructions: []string{
					"Seed the corpus from the message catalog examples",
					"Assert no panics, no unbounded memory, no hangs",
					"Add differential fuzzing across language implementations when more than one exists",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"binary-protocol", "fuzzing"},
	}
})

var conformanceSuiteTask = task.Define("conformance-suite", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Build the %s conformance suite", args.String("protocolName")),
		Agent: task.Agent{
			Name: "qa-engineer",
			Prompt: task.Prompt{
				Role: "QA engineer",
				Task: "Produce a language-neutral conformance corpus with expected decode results",
				Instructions: []string{
					"One golden file per message type, valid and invalid variants",
					"Express expected results as canonical JSON for cross-language checks",
					"Include truncation cases at every field boundary",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"binary-protocol", "conformance"},
	}
})

var protocolDocsTask = task.Define("protocol-docs", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Document the %s parser", args.String("protocolName")),
		Agent: task.Agent{
			Name: "tech-writer",
			Prompt: task.Prompt{
				Role: "Technical writer",
				Task: "Write the parser architecture guide and wire-format reference",
				Instructions: []string{
					"Render the state machine as a diagram artifact",
					"Document the Feed API contract and error semantics",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"binary-protocol", "docs"},
	}
})
