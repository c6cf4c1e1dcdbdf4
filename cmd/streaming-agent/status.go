package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/embedder"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm/providers"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display system health and status",
	Long: `Status checks every dependency the agent needs to answer questions:
  - Catalog database connectivity
  - LLM provider availability
  - Embedding provider availability
  - Synopsis index and its document count`,
	RunE: runStatus,
}

// checkTimeout bounds each individual health probe.
const checkTimeout = 5 * time.Second

// componentStatus is the health of one dependency.
type componentStatus struct {
	Name   string             `json:"name"`
	Detail string             `json:"detail"`
	Health types.HealthStatus `json:"health"`
}

// systemStatus is the complete picture the command reports.
type systemStatus struct {
	Overall    types.HealthState `json:"overall"`
	Components []componentStatus `json:"components"`
	CheckedAt  time.Time         `json:"checked_at"`
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output status in JSON format")
}

func runStatus(cmd *cobra.Command, args []string) error {
	status := collectSystemStatus(cmd.Context())

	if statusJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	printTextStatus(cmd, status)
	return nil
}

// collectSystemStatus probes every dependency under its own timeout.
func collectSystemStatus(ctx context.Context) systemStatus {
	status := systemStatus{
		CheckedAt: time.Now(),
		Components: []componentStatus{
			checkDatabase(ctx),
			checkProvider(ctx),
			checkEmbedder(ctx),
			checkIndex(ctx),
		},
	}
	status.Overall = overallHealth(status.Components)
	return status
}

func checkDatabase(ctx context.Context) componentStatus {
	cfg := appConfig.Database
	status := componentStatus{
		Name:   "database",
		Detail: fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	pool, err := catalog.Open(ctx, cfg)
	if err != nil {
		status.Health = types.NewHealthStatus(types.HealthStateUnhealthy, err.Error())
		return status
	}
	defer pool.Close()

	status.Health = catalog.NewExecutor(pool, cfg.QueryTimeout).Health(ctx)
	return status
}

func checkProvider(ctx context.Context) componentStatus {
	cfg := appConfig.LLM
	status := componentStatus{
		Name:   "llm",
		Detail: fmt.Sprintf("%s, models %s / %s", cfg.Provider, cfg.SQLModel, cfg.ConversationModel),
	}

	provider, err := providers.NewProvider(llm.ProviderConfig{
		Type:         llm.NormalizeProviderType(cfg.Provider),
		BaseURL:      cfg.BaseURL,
		DefaultModel: cfg.ConversationModel,
	})
	if err != nil {
		status.Health = types.NewHealthStatus(types.HealthStateUnhealthy, err.Error())
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	status.Health = provider.Health(ctx)
	return status
}

func checkEmbedder(ctx context.Context) componentStatus {
	cfg := appConfig.Embedding
	status := componentStatus{
		Name:   "embedder",
		Detail: fmt.Sprintf("%s (%d dims)", cfg.Model, cfg.Dimensions),
	}

	emb, err := embedder.New(cfg)
	if err != nil {
		status.Health = types.NewHealthStatus(types.HealthStateUnhealthy, err.Error())
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	status.Health = emb.Health(ctx)
	return status
}

func checkIndex(ctx context.Context) componentStatus {
	status := componentStatus{
		Name:   "index",
		Detail: appConfig.Index.Path,
	}

	store, err := openIndexStore(appConfig)
	if err != nil {
		status.Health = types.NewHealthStatus(types.HealthStateUnhealthy, err.Error())
		return status
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	status.Health = store.Health(ctx)

	if count, err := store.Count(ctx); err == nil {
		status.Detail = fmt.Sprintf("%s, %d document(s)", appConfig.Index.Path, count)
		if count == 0 && status.Health.IsHealthy() {
			status.Health = types.NewHealthStatus(types.HealthStateDegraded,
				"index is empty (run 'streaming-agent ingest' to load synopses)")
		}
	}
	return status
}

// overallHealth rolls the component states up: healthy only when every
// dependency is, unhealthy when none are.
func overallHealth(components []componentStatus) types.HealthState {
	healthy := 0
	unhealthy := 0
	for _, c := range components {
		switch {
		case c.Health.IsHealthy():
			healthy++
		case c.Health.IsUnhealthy():
			unhealthy++
		}
	}

	switch {
	case healthy == len(components):
		return types.HealthStateHealthy
	case unhealthy == len(components):
		return types.HealthStateUnhealthy
	default:
		return types.HealthStateDegraded
	}
}

func printTextStatus(cmd *cobra.Command, status systemStatus) {
	cmd.Printf("\n%s Overall: %s\n\n", healthSymbol(status.Overall), status.Overall)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"component", "status", "detail"})
	for _, c := range status.Components {
		t.AppendRow(table.Row{
			c.Name,
			fmt.Sprintf("%s %s", healthSymbol(c.Health.State), c.Health.State),
			c.Detail,
		})
	}
	cmd.Println(t.Render())

	for _, c := range status.Components {
		if !c.Health.IsHealthy() && c.Health.Message != "" {
			cmd.Printf("\n%s %s: %s\n", healthSymbol(c.Health.State), c.Name, c.Health.Message)
		}
	}
	cmd.Println()
}

func healthSymbol(state types.HealthState) string {
	switch state {
	case types.HealthStateHealthy:
		return "✓"
	case types.HealthStateDegraded:
		return "⚠"
	default:
		return "✗"
	}
}
