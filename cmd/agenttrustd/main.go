// Command agenttrustd runs the witness daemon and serves periodic trust
// digests for a single agent workspace.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/agenttrust/core/pkg/config"
	"github.com/agenttrust/core/pkg/correlation"
	"github.com/agenttrust/core/pkg/daemon"
	"github.com/agenttrust/core/pkg/digest"
	"github.com/agenttrust/core/pkg/health"
	"github.com/agenttrust/core/pkg/ledger"
	"github.com/agenttrust/core/pkg/logger"
	"github.com/agenttrust/core/pkg/metrics"
	"github.com/agenttrust/core/pkg/query"
	"github.com/agenttrust/core/pkg/rules"
	"github.com/agenttrust/core/pkg/securerandom"
	"github.com/agenttrust/core/pkg/witness"
)

func main() {
	workspace := flag.String("workspace", ".", "agent workspace root")
	configPath := flag.String("config", "", "path to agenttrust.yaml (searched if empty)")
	flag.Parse()

	runID := securerandom.MustID(8)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agenttrustd: load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		fmt.Fprintf(os.Stderr, "agenttrustd: init logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Global().WithComponent("agenttrustd").WithSessionID(runID)
	log.Info("starting", "workspace", *workspace)

	ledgerDir := filepath.Join(*workspace, ".agenttrust", "ledger")
	claimsDir := filepath.Join(*workspace, ".agenttrust", "claims")
	witnessDir := filepath.Join(*workspace, ".agenttrust", "witness")

	execStore := ledger.NewExecutionStore(ledgerDir)
	claimStore := ledger.NewClaimStore(claimsDir)
	witnessStore := ledger.NewWitnessStore(witnessDir)

	collector := metrics.NewCollector()

	ruleEngine, err := rules.NewEngine(rules.EngineConfig{})
	if err != nil {
		log.ErrorEvent(context.Background(), "rule engine init failed", err)
		os.Exit(1)
	}

	noiseClassifier := correlation.NewClassifier(cfg.ToNoiseConfig())

	monitors := map[string]witness.Monitor{
		"filesystem": witness.NewFileMonitor(witness.FileMonitorConfig{
			Dirs: []string{*workspace},
		}),
		"process": witness.NewProcessMonitor(witness.ProcessMonitorConfig{}),
		"network": witness.NewNetworkMonitor(witness.NetworkMonitorConfig{}),
	}

	d := daemon.New(daemon.Config{
		Monitors: monitors,
		Sink: func(batch []witness.RawEvent) error {
			for _, ev := range batch {
				w, err := witnessStore.Append(ledger.WitnessInput{
					Source: ev.Source,
					Event:  ev.Event,
				})
				if err != nil {
					log.ErrorEvent(context.Background(), "witness append failed", err, slog.String("source", string(ev.Source)))
					continue
				}
				if noiseClassifier.Classify(w) == correlation.NoiseBackground {
					continue
				}
				collector.RecordWitnessEvent(string(ev.Source))
			}
			return nil
		},
	})
	d.Start()
	defer d.Stop()

	hm := health.NewMonitor(d, health.DefaultConfig())
	hm.SetStaleHandler(func(source string, lastEventAt time.Time) {
		log.Warn("witness_source_stale", "source", source, "last_event_at", lastEventAt)
	})
	hm.Start()
	defer hm.Stop()

	assembler := digest.NewAssembler(ledgerSource{execStore, claimStore}, ruleEngine, nil)
	scheduler := digest.NewScheduler(assembler, digest.SchedulerConfig{
		Schedule: "0 0 * * *", // midnight UTC
		Sink: func(report *digest.Report) {
			log.Info("digest_ready",
				"from", report.From,
				"to", report.To,
				"executions", report.TotalExecutions,
				"claims", report.TotalClaims,
			)
		},
	})
	if err := scheduler.Start(); err != nil {
		log.ErrorEvent(context.Background(), "digest scheduler start failed", err)
	}
	defer scheduler.Stop()

	log.Info("ready")
	select {}
}

// ledgerSource adapts the two stores to digest.Source without the
// assembler needing to know about time-windowed reads beyond the
// interface it already defines against pkg/query.
type ledgerSource struct {
	exec   *ledger.ExecutionStore
	claims *ledger.ClaimStore
}

func (s ledgerSource) ReadExecutions(r query.TimeRange) ([]*ledger.Execution, error) {
	all, err := s.exec.ReadAll()
	if err != nil {
		return nil, err
	}
	f := query.Filter{Range: &r}
	return f.Apply(all), nil
}

func (s ledgerSource) ReadClaims(r query.TimeRange) ([]*ledger.Claim, error) {
	all, err := s.claims.ReadAll()
	if err != nil {
		return nil, err
	}
	var out []*ledger.Claim
	f := query.ClaimFilter{Range: &r}
	for _, c := range all {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
