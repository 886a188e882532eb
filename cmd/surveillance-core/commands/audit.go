package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sentinel-surveillance/core/pkg/apperr"
	"github.com/sentinel-surveillance/core/pkg/audit"
	"github.com/sentinel-surveillance/core/pkg/audit/checks"
	"github.com/sentinel-surveillance/core/pkg/clock"
	"github.com/sentinel-surveillance/core/pkg/dispatch"
)

var (
	auditScope            string
	auditEvidenceManifest string
	auditAccessControlDoc string
	auditReportDir        string
	auditRemediationDir   string
)

// distributorPublisher adapts a dispatch.Distributor into an
// audit.AlertPublisher, realizing §2's "A publishes an alert when a
// Critical finding is raised."
type distributorPublisher struct {
	distributor *dispatch.Distributor
}

func (p distributorPublisher) Publish(ctx context.Context, f audit.Finding) error {
	_, err := p.distributor.Dispatch(ctx, dispatch.Alert{
		AlertID:   f.FindingID,
		Type:      "audit_finding",
		Message:   fmt.Sprintf("%s: %s", f.Category, f.Standard),
		Severity:  string(f.Severity),
		Timestamp: f.DetectedAt,
	})
	return err
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run one compliance audit pass and print the resulting report",
	Long: `Runs every registered check due on this tick — or only the checks named
by --scope — against the configured evidence surface, and prints the
resulting AuditReport as JSON.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&auditScope, "scope", "", "comma-separated check ids to run (default: every registered check)")
	auditCmd.Flags().StringVar(&auditEvidenceManifest, "evidence-manifest", "", "path to the evidence checksum manifest")
	auditCmd.Flags().StringVar(&auditAccessControlDoc, "access-control-doc", "", "path to the access-control policy document")
	auditCmd.Flags().StringVar(&auditReportDir, "report-dir", "", "directory to persist the audit report into")
	auditCmd.Flags().StringVar(&auditRemediationDir, "remediation-dir", "", "directory to queue High/Medium findings into")
}

func defaultCatalog() *audit.Catalog {
	cat := audit.NewCatalog()
	cat.Register(checks.EvidenceIntegrity())
	cat.Register(checks.AccessControlDoc())
	cat.Register(checks.IDSRArtifactShape())
	return cat
}

func scopedCatalog(scope string) (*audit.Catalog, error) {
	full := defaultCatalog()
	if scope == "" {
		return full, nil
	}

	wanted := make(map[string]bool)
	for _, id := range strings.Split(scope, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			wanted[id] = true
		}
	}

	cat := audit.NewCatalog()
	for _, c := range full.All() {
		if wanted[c.ID] {
			cat.Register(*c)
			delete(wanted, c.ID)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for id := range wanted {
			unknown = append(unknown, id)
		}
		return nil, apperr.Newf(apperr.Validation, "unknown check id(s): %s", strings.Join(unknown, ", "))
	}
	return cat, nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.New())
	if err != nil {
		return err
	}

	cat, err := scopedCatalog(auditScope)
	if err != nil {
		return err
	}

	reports, err := audit.NewReportStore(auditReportDir)
	if err != nil {
		return err
	}

	remediation, err := audit.NewRemediationStore(auditRemediationDir)
	if err != nil {
		return err
	}

	opts := []audit.Option{
		audit.WithCatalog(cat),
		audit.WithReportStore(reports),
		audit.WithRemediationQueue(remediation),
		audit.WithAgentConfig(cfg.Audit),
		audit.WithContextFunc(func() audit.CheckContext {
			return audit.CheckContext{
				Clock:                clock.Real{},
				EvidenceManifestPath: auditEvidenceManifest,
				AccessControlDocPath: auditAccessControlDoc,
			}
		}),
	}
	if cfg.Dispatch.WebhookURL != "" {
		dedup := time.Duration(cfg.Dispatch.DedupWindowSeconds) * time.Second
		channel := dispatch.NewChatChannel(cfg.Dispatch.WebhookURL, cfg.Dispatch.ChannelRef, dedup, clock.Real{})
		distributor := dispatch.New(
			dispatch.WithChannels(channel),
			dispatch.WithChannelTimeout(time.Duration(cfg.Dispatch.ChannelTimeoutSeconds)*time.Second),
		)
		opts = append(opts, audit.WithAlertPublisher(distributorPublisher{distributor: distributor}))
	}

	agent := audit.New(opts...)

	report, err := agent.RunOnce(context.Background())
	if err != nil {
		return err
	}
	return printJSON(report)
}
