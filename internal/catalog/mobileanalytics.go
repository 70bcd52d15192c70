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

const mobileAnalyticsID = "development/mobile-analytics-setup"

// mobileAnalyticsPhases is the fixed phase count reported in the
// analyticsConfig result section.
const mobileAnalyticsPhases = 14

func init() {
	register(process.Process{
		ID:      mobileAnalyticsID,
		Title:   "Mobile analytics setup",
		Summary: "End-to-end analytics rollout for a mobile app: provider selection, event taxonomy, per-platform SDK integration, consent, dashboards and QA.",
		Inputs: []process.InputDoc{
			{Name: "appName", Type: "string", Required: true, Description: "Application name used across prompts and artifact titles"},
			{Name: "platforms", Type: "[]string", Default: "[ios android]", Description: "Target platforms, one SDK integration task each"},
			{Name: "analyticsProviders", Type: "[]string", Default: "[firebase]", Description: "Analytics providers to evaluate and wire"},
			{Name: "privacyRegion", Type: "string", Default: "eu", Description: "Primary privacy regime driving consent requirements"},
		},
		Run: runMobileAnalyticsSetup,
	})
}

// AnalyticsConfig is the process-specific result section.
type AnalyticsConfig struct {
	Providers []string `json:"providers"`
	Platforms []string `json:"platforms"`
	Phases    int      `json:"phases"`
}

func runMobileAnalyticsSetup(ctx context.Context, ectx engine.Ctx, in process.Inputs) (*process.Result, error) {
	appName := in.String("appName", "App")
	platforms := in.Strings("platforms", []string{"ios", "android"})
	providers := in.Strings("analyticsProviders", []string{"firebase"})
	privacyRegion := in.String("privacyRegion", "eu")

	ectx.Log(slog.LevelInfo, "starting mobile analytics setup",
		"app", appName, "platforms", platforms, "providers", providers)

	base := task.Args{
		"appName":       appName,
		"platforms":     platforms,
		"providers":     providers,
		"privacyRegion": privacyRegion,
	}

	phases := []phase.Phase{
		static("requirements", analyticsRequirementsTask, base),
		static("providerEvaluation", providerEvaluationTask, base),
		{
			Key: "eventTaxonomy",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				args := task.Args{
					"appName":   appName,
					"providers": providers,
					"metrics":   vals["requirements"].Strings("keyMetrics"),
				}
				return eventTaxonomyTask, args
			},
			After: &phase.Checkpoint{
				Title:       "Review event taxonomy",
				Question:    fmt.Sprintf("Does the event taxonomy for %s cover the product's key flows?", appName),
				ContextKeys: []string{"requirements", "eventTaxonomy"},
			},
		},
		static("identityResolution", identityResolutionTask, base),
		static("consentManagement", consentManagementTask, base),
		{
			Key: "sdkIntegration",
			FanOut: func(vals phase.Values) []engine.Call {
				calls := make([]engine.Call, 0, len(platforms))
				for _, platform := range platforms {
					calls = append(calls, engine.Call{
						Def: sdkIntegrationTask,
						Args: task.Args{
							"appName":   appName,
							"platform":  platform,
							"providers": providers,
						},
					})
				}
				return calls
			},
		},
		{
			Key: "eventInstrumentation",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				return eventInstrumentationTask, task.Args{
					"appName":   appName,
					"platforms": platforms,
					"events":    vals["eventTaxonomy"].Strings("events"),
				}
			},
		},
		static("screenTracking", screenTrackingTask, base),
		static("crashReporting", crashReportingTask, base),
		static("attribution", attributionTask, base),
		{
			Key: "dashboards",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				return dashboardsTask, task.Args{
					"appName":   appName,
					"providers": providers,
					"events":    vals["eventTaxonomy"].Strings("events"),
				}
			},
		},
		{
			Key:   "qaValidation",
			Build: func(phase.Values) (task.Definition, task.Args) { return analyticsQATask, base },
			After: &phase.Checkpoint{
				Title:       "Review analytics QA results",
				Question:    "Do the QA findings clear the rollout?",
				ContextKeys: []string{"qaValidation"},
			},
		},
		static("rolloutPlan", rolloutPlanTask, base),
		static("documentation", analyticsDocsTask, base),
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
			ProcessID: mobileAnalyticsID,
			Timestamp: ectx.Now(),
			Inputs:    in,
		},
		Sections: map[string]any{
			"analyticsConfig": AnalyticsConfig{
				Providers: providers,
				Platforms: platforms,
				Phases:    mobileAnalyticsPhases,
			},
		},
	}, nil
}

var analyticsRequirementsTask = task.Define("analytics-requirements", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Gather analytics requirements for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "analytics-architect",
			Prompt: task.Prompt{
				Role: "Senior mobile analytics architect",
				Task: "Capture the business questions, key metrics and tracking constraints for the app",
				Instructions: []string{
					"Interview the product brief for north-star and supporting metrics",
					"List funnels and retention cohorts the team must be able to answer",
					"Note regulatory constraints for the configured privacy region",
					"Flag metrics that require backend events rather than client events",
				},
				OutputFormat: "JSON with summary, keyMetrics, funnels and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"keyMetrics": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"funnels":    map[string]any{"type": "array"},
			}, "keyMetrics"),
		},
		Labels: []string{"mobile-analytics", "requirements"},
	}
})

var providerEvaluationTask = task.Define("provider-evaluation", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Evaluate analytics providers for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "analytics-architect",
			Prompt: task.Prompt{
				Role:    "Senior mobile analytics architect",
				Task:    "Compare the candidate analytics providers against the gathered requirements",
				Context: fmt.Sprintf("Candidates: %v", args.Strings("providers")),
				Instructions: []string{
					"Score each provider on SDK size, event limits, identity features and pricing",
					"Call out data residency options per provider",
					"Recommend a primary provider and any secondary destination",
				},
				OutputFormat: "JSON with summary, recommendation and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"recommendation": map[string]any{"type": "string"},
			}),
		},
		Labels: []string{"mobile-analytics", "evaluation"},
	}
})

var eventTaxonomyTask = task.Define("event-taxonomy", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Design event taxonomy for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "analytics-architect",
			Prompt: task.Prompt{
				Role: "Senior mobile analytics architect",
				Task: "Design the canonical event and property taxonomy",
				Instructions: []string{
					"Derive events from the key metrics and funnels",
					"Use object_action naming and define required properties per event",
					"Keep the taxonomy under fifty events; merge near-duplicates",
					"Produce a tracking plan table as a markdown artifact",
				},
				OutputFormat: "JSON with summary, events and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"events": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}, "events"),
		},
		Labels: []string{"mobile-analytics", "taxonomy"},
	}
})

var identityResolutionTask = task.Define("identity-resolution", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Plan identity resolution for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "analytics-architect",
			Prompt: task.Prompt{
				Role: "Senior mobile analytics architect",
				Task: "Define anonymous and authenticated identity handling across devices",
				Instructions: []string{
					"Specify anonymous ID lifecycle and alias/merge rules on login",
					"Define which traits are attached to users vs devices",
					"Document reset behavior on logout and on consent withdrawal",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "identity"},
	}
})

var consentManagementTask = task.Define("consent-management", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Design consent management for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "privacy-engineer",
			Prompt: task.Prompt{
				Role:    "Privacy engineer",
				Task:    "Design the consent capture and enforcement flow for analytics collection",
				Context: fmt.Sprintf("Primary privacy region: %s", args.String("privacyRegion")),
				Instructions: []string{
					"Map consent categories to SDK initialization behavior",
					"Define the pre-consent event queue or drop policy",
					"Cover ATT prompts on iOS and consent-mode equivalents per provider",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "privacy"},
	}
})

var sdkIntegrationTask = task.Define("sdk-integration", func(args task.Args, tc task.Context) task.Spec {
	platform := args.String("platform")
	return task.Spec{
		Title: fmt.Sprintf("Integrate analytics SDKs on %s for %s", platform, args.String("appName")),
		Agent: task.Agent{
			Name: "mobile-engineer",
			Prompt: task.Prompt{
				Role:    "Senior mobile engineer",
				Task:    fmt.Sprintf("Produce the %s integration guide and wrapper module for the selected providers", platform),
				Context: fmt.Sprintf("Providers: %v", args.Strings("providers")),
				Instructions: []string{
					"Wrap provider SDKs behind a single analytics facade",
					"Initialize lazily after consent, never in application start path",
					"Document build configuration and dependency pinning",
					"Include a debug-build event logger for QA",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "sdk", platform},
	}
})

var eventInstrumentationTask = task.Define("event-instrumentation", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Plan event instrumentation for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "mobile-engineer",
			Prompt: task.Prompt{
				Role:    "Senior mobile engineer",
				Task:    "Map each taxonomy event to its emission point in the app",
				Context: fmt.Sprintf("Events: %v", args.Strings("events")),
				Instructions: []string{
					"Locate the emission point per event and its property sources",
					"Prefer view-model layer emission over view layer",
					"Mark events needing server-side emission",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "instrumentation"},
	}
})

var screenTrackingTask = task.Define("screen-tracking", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Define screen tracking for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "mobile-engineer",
			Prompt: task.Prompt{
				Role: "Senior mobile engineer",
				Task: "Specify automatic and manual screen view tracking",
				Instructions: []string{
					"Define canonical screen names shared across platforms",
					"Decide automatic vs manual tracking per navigation pattern",
					"Exclude sensitive screens from tracking",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "screens"},
	}
})

var crashReportingTask = task.Define("crash-reporting", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Wire crash reporting for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "mobile-engineer",
			Prompt: task.Prompt{
				Role: "Senior mobile engineer",
				Task: "Connect crash and ANR reporting to the analytics identity",
				Instructions: []string{
					"Attach the analytics anonymous ID to crash reports",
					"Define breadcrumb conventions from analytics events",
					"Scrub PII from crash metadata",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "stability"},
	}
})

var attributionTask = task.Define("attribution-setup", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Configure install attribution for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "analytics-architect",
			Prompt: task.Prompt{
				Role: "Senior mobile analytics architect",
				Task: "Design install and campaign attribution within privacy constraints",
				Instructions: []string{
					"Configure deferred deep links and campaign parameter capture",
					"Use SKAdNetwork conversion schema on iOS",
					"Reconcile attribution identity with the analytics user model",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "attribution"},
	}
})

var dashboardsTask = task.Define("dashboards", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Build analytics dashboards for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "analytics-architect",
			Prompt: task.Prompt{
				Role:    "Senior mobile analytics architect",
				Task:    "Specify the core dashboards and alerts on top of the tracked events",
				Context: fmt.Sprintf("Providers: %v", args.Strings("providers")),
				Instructions: []string{
					"Define activation, retention and funnel dashboards from the taxonomy",
					"Add data-quality alerts for event volume anomalies",
					"Document dashboard ownership",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "dashboards"},
	}
})

var analyticsQATask = task.Define("analytics-qa", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Validate analytics implementation for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "qa-engineer",
			Prompt: task.Prompt{
				Role: "Mobile QA engineer",
				Task: "Produce and execute the analytics validation plan",
				Instructions: []string{
					"Verify every taxonomy event fires with required properties",
					"Verify consent gating: no events before opt-in",
					"Check identity continuity across login and reinstall",
					"Record discrepancies as a findings artifact",
				},
				OutputFormat: "JSON with summary, findings and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"findings": map[string]any{"type": "array"},
			}),
		},
		Labels: []string{"mobile-analytics", "qa"},
	}
})

var rolloutPlanTask = task.Define("rollout-plan", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Plan analytics rollout for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "analytics-architect",
			Prompt: task.Prompt{
				Role: "Senior mobile analytics architect",
				Task: "Plan the staged rollout of the instrumented release",
				Instructions: []string{
					"Stage by platform and release ring with event-volume checkpoints",
					"Define rollback triggers on data-quality alerts",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "rollout"},
	}
})

var analyticsDocsTask = task.Define("analytics-docs", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Document the analytics setup for %s", args.String("appName")),
		Agent: task.Agent{
			Name: "tech-writer",
			Prompt: task.Prompt{
				Role: "Technical writer",
				Task: "Assemble the tracking plan, integration guides and runbooks into final docs",
				Instructions: []string{
					"Merge per-platform integration guides into one handbook",
					"Publish the tracking plan with ownership per event",
					"Include the consent and QA runbooks",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"mobile-analytics", "docs"},
	}
})
