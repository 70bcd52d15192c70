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

const goldenPathsID = "scaffolding/golden-path-templates"

func init() {
	register(process.Process{
		ID:      goldenPathsID,
		Title:   "Golden path template generation",
		Summary: "Generates and validates one service scaffold template per golden path, with a shared conventions inventory.",
		Inputs: []process.InputDoc{
			{Name: "platformName", Type: "string", Required: true, Description: "Internal developer platform name"},
			{Name: "templates", Type: "[]string", Default: "[rest-api cli-tool worker-service]", Description: "Golden paths, one template task each"},
		},
		Run: runGoldenPaths,
	})
}

func runGoldenPaths(ctx context.Context, ectx engine.Ctx, in process.Inputs) (*process.Result, error) {
	platformName := in.String("platformName", "platform")
	templates := in.Strings("templates", []string{"rest-api", "cli-tool", "worker-service"})

	ectx.Log(slog.LevelInfo, "starting golden path template generation",
		"platform", platformName, "templates", templates)

	base := task.Args{"platformName": platformName, "templates": templates}

	phases := []phase.Phase{
		static("conventions", conventionsInventoryTask, base),
		{
			Key: "templateGeneration",
			FanOut: func(vals phase.Values) []engine.Call {
				conventions := vals["conventions"].Strings("conventions")
				calls := make([]engine.Call, 0, len(templates))
				for _, tpl := range templates {
					calls = append(calls, engine.Call{
						Def: templateGenerationTask,
						Args: task.Args{
							"platformName": platformName,
							"template":     tpl,
							"conventions":  conventions,
						},
					})
				}
				return calls
			},
			After: &phase.Checkpoint{
				Title:       "Review generated templates",
				Question:    "Do the generated scaffolds match platform conventions before publication?",
				ContextKeys: []string{"conventions"},
			},
		},
		static("scaffoldValidation", scaffoldValidationTask, base),
		static("publication", templatePublicationTask, base),
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
			ProcessID: goldenPathsID,
			Timestamp: ectx.Now(),
			Inputs:    in,
		},
		Sections: map[string]any{
			"scaffoldPlan": map[string]any{
				"templates": templates,
				"phases":    len(phases),
			},
		},
	}, nil
}

var conventionsInventoryTask = task.Define("conventions-inventory", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Inventory %s platform conventions", args.String("platformName")),
		Agent: task.Agent{
			Name: "platform-engineer",
			Prompt: task.Prompt{
				Role: "Platform engineer",
				Task: "Collect the cross-cutting conventions every golden path must bake in",
				Instructions: []string{
					"Capture logging, config, CI and deployment conventions",
					"Note conventions that differ per service archetype",
				},
				OutputFormat: "JSON with summary, conventions and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"conventions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}, "conventions"),
		},
		Labels: []string{"golden-paths", "conventions"},
	}
})

var templateGenerationTask = task.Define("template-generation", func(args task.Args, tc task.Context) task.Spec {
	tpl := args.String("template")
	return task.Spec{
		Title: fmt.Sprintf("Generate the %s golden path template", tpl),
		Agent: task.Agent{
			Name: "scaffold-generator",
			Prompt: task.Prompt{
				Role:    "Platform engineer",
				Task:    fmt.Sprintf("Generate the %s service scaffold", tpl),
				Context: fmt.Sprintf("Conventions: %v", args.Strings("conventions")),
				Instructions: []string{
					"A fresh scaffold must build, test and deploy with zero edits",
					"Wire the platform conventions, not placeholders",
					"Keep template parameters to name, team and port",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"golden-paths", "template", tpl},
	}
})

var scaffoldValidationTask = task.Define("scaffold-validation", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Validate %s golden path scaffolds", args.String("platformName")),
		Agent: task.Agent{
			Name: "qa-engineer",
			Prompt: task.Prompt{
				Role: "QA engineer",
				Task: "Instantiate and exercise every generated template",
				Instructions: []string{
					"Instantiate each template and run its full CI pipeline",
					"Fail the batch if any scaffold needs manual edits",
				},
				OutputFormat: "JSON with summary, findings and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"findings": map[string]any{"type": "array"},
			}),
		},
		Labels: []string{"golden-paths", "validation"},
	}
})

var templatePublicationTask = task.Define("template-publication", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Publish %s golden path templates", args.String("platformName")),
		Agent: task.Agent{
			Name: "platform-engineer",
			Prompt: task.Prompt{
				Role: "Platform engineer",
				Task: "Publish the validated templates to the service catalog",
				Instructions: []string{
					"Version templates and record the conventions snapshot they encode",
					"Announce deprecation windows for superseded versions",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"golden-paths", "publication"},
	}
})
