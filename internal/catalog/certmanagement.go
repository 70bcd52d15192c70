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

const certManagementID = "security/certificate-management"

func init() {
	register(process.Process{
		ID:      certManagementID,
		Title:   "Certificate management system",
		Summary: "CA hierarchy design, issuance and renewal automation, revocation, distribution and monitoring for an internal PKI.",
		Inputs: []process.InputDoc{
			{Name: "organization", Type: "string", Required: true, Description: "Organization the PKI serves"},
			{Name: "environments", Type: "[]string", Default: "[staging production]", Description: "Deployment environments with separate trust domains"},
			{Name: "certLifetime", Type: "string", Default: "90d", Description: "Target leaf certificate lifetime"},
		},
		Run: runCertificateManagement,
	})
}

func runCertificateManagement(ctx context.Context, ectx engine.Ctx, in process.Inputs) (*process.Result, error) {
	organization := in.String("organization", "org")
	environments := in.Strings("environments", []string{"staging", "production"})
	certLifetime := in.String("certLifetime", "90d")

	ectx.Log(slog.LevelInfo, "starting certificate management process",
		"organization", organization, "environments", environments)

	base := task.Args{
		"organization": organization,
		"environments": environments,
		"certLifetime": certLifetime,
	}

	phases := []phase.Phase{
		{
			Key:   "caHierarchy",
			Build: func(phase.Values) (task.Definition, task.Args) { return caHierarchyTask, base },
			After: &phase.Checkpoint{
				Title:       "Review CA hierarchy",
				Question:    fmt.Sprintf("Approve the %s CA hierarchy before any key material is provisioned?", organization),
				ContextKeys: []string{"caHierarchy"},
			},
		},
		{
			Key: "issuanceWorkflow",
			Build: func(vals phase.Values) (task.Definition, task.Args) {
				return issuanceWorkflowTask, task.Args{
					"organization": organization,
					"certLifetime": certLifetime,
					"tiers":        vals["caHierarchy"].Strings("tiers"),
				}
			},
		},
		static("renewalAutomation", renewalAutomationTask, base),
		static("revocation", revocationTask, base),
		{
			Key: "distribution",
			FanOut: func(vals phase.Values) []engine.Call {
				calls := make([]engine.Call, 0, len(environments))
				for _, env := range environments {
					calls = append(calls, engine.Call{
						Def: trustDistributionTask,
						Args: task.Args{
							"organization": organization,
							"environment":  env,
						},
					})
				}
				return calls
			},
		},
		static("monitoring", certMonitoringTask, base),
		// The source process declared two colliding testSuiteTask
		// factories; split into unit and rotation-drill suites.
		static("unitTestSuite", certUnitTestSuiteTask, base),
		static("rotationDrill", certRotationDrillTask, base),
		static("runbook", certRunbookTask, base),
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
			ProcessID: certManagementID,
			Timestamp: ectx.Now(),
			Inputs:    in,
		},
		Sections: map[string]any{
			"pkiPlan": map[string]any{
				"organization": organization,
				"environments": environments,
				"phases":       len(phases),
			},
		},
	}, nil
}

var caHierarchyTask = task.Define("ca-hierarchy", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Design the %s CA hierarchy", args.String("organization")),
		Agent: task.Agent{
			Name: "pki-architect",
			Prompt: task.Prompt{
				Role:    "PKI architect",
				Task:    "Design the root/intermediate CA hierarchy and trust domains",
				Context: fmt.Sprintf("Environments: %v", args.Strings("environments")),
				Instructions: []string{
					"Keep the root offline; one intermediate per trust domain",
					"Define name constraints and path length per tier",
					"Specify key algorithms, sizes and HSM custody",
					"Set CA certificate lifetimes and rollover overlap windows",
				},
				OutputFormat: "JSON with summary, tiers and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"tiers": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}, "tiers"),
		},
		Labels: []string{"certificate-management", "ca-design"},
	}
})

var issuanceWorkflowTask = task.Define("issuance-workflow", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Design certificate issuance for %s", args.String("organization")),
		Agent: task.Agent{
			Name: "pki-architect",
			Prompt: task.Prompt{
				Role:    "PKI architect",
				Task:    "Define the end-entity issuance workflow and identity proofing",
				Context: fmt.Sprintf("CA tiers: %v; leaf lifetime: %s", args.Strings("tiers"), args.String("certLifetime")),
				Instructions: []string{
					"Use ACME for workload certificates; manual flow only for exceptions",
					"Bind SANs to verified workload identity, never free-form requests",
					"Define issuance policy checks and audit logging",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"certificate-management", "issuance"},
	}
})

var renewalAutomationTask = task.Define("renewal-automation", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Automate certificate renewal for %s", args.String("organization")),
		Agent: task.Agent{
			Name: "platform-engineer",
			Prompt: task.Prompt{
				Role:    "Platform engineer",
				Task:    "Automate renewal so no certificate expiry ever requires a human",
				Context: fmt.Sprintf("Leaf lifetime: %s", args.String("certLifetime")),
				Instructions: []string{
					"Renew at two-thirds of lifetime with jitter",
					"Reload serving processes without dropping connections",
					"Alert only when automated renewal has already failed twice",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"certificate-management", "renewal"},
	}
})

var revocationTask = task.Define("revocation", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Design revocation for %s", args.String("organization")),
		Agent: task.Agent{
			Name: "pki-architect",
			Prompt: task.Prompt{
				Role: "PKI architect",
				Task: "Define revocation mechanics and compromise response",
				Instructions: []string{
					"Prefer short lifetimes over CRL freshness heroics",
					"Serve OCSP with stapling for long-lived certificates",
					"Write the key-compromise response procedure per tier",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"certificate-management", "revocation"},
	}
})

var trustDistributionTask = task.Define("trust-distribution", func(args task.Args, tc task.Context) task.Spec {
	env := args.String("environment")
	return task.Spec{
		Title: fmt.Sprintf("Distribute %s trust anchors to %s", args.String("organization"), env),
		Agent: task.Agent{
			Name: "platform-engineer",
			Prompt: task.Prompt{
				Role: "Platform engineer",
				Task: fmt.Sprintf("Plan trust anchor distribution and rotation for the %s environment", env),
				Instructions: []string{
					"Distribute bundles through configuration management, not baked images",
					"Support serving old and new anchors during rollover",
					"Verify bundle integrity at install time",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"certificate-management", "distribution", env},
	}
})

var certMonitoringTask = task.Define("cert-monitoring", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Monitor certificate health for %s", args.String("organization")),
		Agent: task.Agent{
			Name: "platform-engineer",
			Prompt: task.Prompt{
				Role: "Platform engineer",
				Task: "Define expiry, issuance-volume and CT monitoring",
				Instructions: []string{
					"Inventory every serving endpoint and its certificate chain",
					"Alert on unexpected issuers seen in CT logs",
					"Track renewal failures as a leading indicator",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"certificate-management", "monitoring"},
	}
})

var certUnitTestSuiteTask = task.Define("cert-unit-test-suite", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Build the %s PKI test suite", args.String("organization")),
		Agent: task.Agent{
			Name: "qa-engineer",
			Prompt: task.Prompt{
				Role: "QA engineer",
				Task: "Test issuance policy, chain building and validation logic",
				Instructions: []string{
					"Cover name-constraint enforcement and rejected SAN shapes",
					"Verify chain building across rollover overlap",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"certificate-management", "tests"},
	}
})

var certRotationDrillTask = task.Define("cert-rotation-drill", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Run a rotation drill for %s", args.String("organization")),
		Agent: task.Agent{
			Name: "qa-engineer",
			Prompt: task.Prompt{
				Role: "QA engineer",
				Task: "Exercise intermediate CA rotation end to end in staging",
				Instructions: []string{
					"Rotate an intermediate and verify zero serving disruption",
					"Time the full drill; it bounds real incident response",
				},
				OutputFormat: "JSON with summary, findings and artifacts",
			},
			OutputSchema: resultSchema(map[string]any{
				"findings": map[string]any{"type": "array"},
			}),
		},
		Labels: []string{"certificate-management", "drill"},
	}
})

var certRunbookTask = task.Define("cert-runbook", func(args task.Args, tc task.Context) task.Spec {
	return task.Spec{
		Title: fmt.Sprintf("Write the %s PKI runbook", args.String("organization")),
		Agent: task.Agent{
			Name: "tech-writer",
			Prompt: task.Prompt{
				Role: "Technical writer",
				Task: "Assemble operational runbooks for the PKI",
				Instructions: []string{
					"Cover issuance exceptions, compromise response and rotation",
					"Keep each procedure executable by the on-call without PKI expertise",
				},
				OutputFormat: "JSON with summary and artifacts",
			},
			OutputSchema: resultSchema(nil),
		},
		Labels: []string{"certificate-management", "docs"},
	}
})
