package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"canvass/internal/config"
	"canvass/internal/deps"
	"canvass/internal/logging"
	"canvass/internal/services"
	"canvass/internal/services/ollama"
)

// ModelManager abstracts the Ollama admin calls a converge run needs.
type ModelManager interface {
	Tags(ctx context.Context) ([]ollama.ModelInfo, error)
	Pull(ctx context.Context, name string, progress func(ollama.PullProgress)) error
	Delete(ctx context.Context, name string) error
}

// ResourceStatus describes the outcome for one declared dependency.
type ResourceStatus string

const (
	ResourcePresent ResourceStatus = "present"
	ResourcePulled  ResourceStatus = "pulled"
	ResourceMissing ResourceStatus = "missing"
	ResourceFailed  ResourceStatus = "failed"
	ResourceRemoved ResourceStatus = "removed"
)

// Resource is one line of the converge report.
type Resource struct {
	Kind   string
	Name   string
	Status ResourceStatus
	Detail string
}

// Result summarizes a converge run. Resolved is true only when every
// declared dependency ended up available.
type Result struct {
	Resources []Resource
	Resolved  bool
	StatePath string
}

// Provisioner converges declared models and binaries against the machine.
type Provisioner struct {
	cfg    *config.Config
	logger *slog.Logger
	models ModelManager
}

// NewProvisioner constructs a provisioner backed by the configured Ollama
// runtime.
func NewProvisioner(cfg *config.Config, logger *slog.Logger) *Provisioner {
	return NewProvisionerWithDependencies(cfg, logger, ollama.NewClient(cfg.Ollama))
}

// NewProvisionerWithDependencies allows injecting a custom model manager (used for tests).
func NewProvisionerWithDependencies(cfg *config.Config, logger *slog.Logger, models ModelManager) *Provisioner {
	return &Provisioner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "provision"),
		models: models,
	}
}

// Converge makes the machine match the manifest: missing models are pulled,
// binaries are verified, and the resulting set is recorded. With prune set,
// models this tool installed earlier but no longer declared are deleted.
func (p *Provisioner) Converge(ctx context.Context, prune bool) (*Result, error) {
	start := time.Now()
	result := &Result{
		Resolved:  true,
		StatePath: StatePath(p.cfg.Paths.LogDir),
	}

	for _, status := range deps.CheckBinaries(p.binaryRequirements()) {
		resource := Resource{Kind: "binary", Name: status.Command, Status: ResourcePresent}
		if !status.Available {
			resource.Status = ResourceMissing
			resource.Detail = status.Detail
			result.Resolved = false
		}
		result.Resources = append(result.Resources, resource)
	}

	installed, err := p.models.Tags(ctx)
	if err != nil {
		return nil, services.Wrap(
			services.ErrExternalTool,
			"provision",
			"list models",
			"Ollama unreachable; start the runtime and retry",
			err,
		)
	}
	installedNames := make([]string, 0, len(installed))
	for _, model := range installed {
		installedNames = append(installedNames, model.Name)
	}

	prior, priorErr := LoadState(result.StatePath)
	if priorErr != nil {
		p.logger.Warn("provision state unreadable; prune disabled for this run",
			logging.Error(priorErr))
	}

	declared := p.cfg.ProvisionModels()
	resolvedModels := make([]string, 0, len(declared))
	for _, model := range declared {
		if contains(installedNames, model, ollama.ModelNamesMatch) {
			result.Resources = append(result.Resources, Resource{Kind: "model", Name: model, Status: ResourcePresent})
			resolvedModels = append(resolvedModels, model)
			continue
		}
		if err := p.pullModel(ctx, model); err != nil {
			result.Resources = append(result.Resources, Resource{
				Kind:   "model",
				Name:   model,
				Status: ResourceFailed,
				Detail: err.Error(),
			})
			result.Resolved = false
			continue
		}
		result.Resources = append(result.Resources, Resource{Kind: "model", Name: model, Status: ResourcePulled})
		resolvedModels = append(resolvedModels, model)
	}

	if prune && priorErr == nil {
		result.Resources = append(result.Resources, p.pruneModels(ctx, prior.Models, declared, installedNames)...)
	}

	state := State{
		UpdatedAt: time.Now().UTC(),
		Models:    resolvedModels,
		Binaries:  p.availableBinaries(result.Resources),
	}
	if err := saveState(result.StatePath, state); err != nil {
		return nil, services.Wrap(services.ErrTransient, "provision", "record state", "Failed to record provision state", err)
	}

	p.logger.Info("provision converge finished",
		logging.Int("declared_models", len(declared)),
		logging.Int("resolved_models", len(resolvedModels)),
		logging.Bool("resolved", result.Resolved),
		logging.Bool("prune", prune),
		logging.Duration("duration", time.Since(start)))

	return result, nil
}

func (p *Provisioner) binaryRequirements() []deps.Requirement {
	return []deps.Requirement{
		{
			Name:        "Ollama",
			Command:     p.cfg.OllamaBinary(),
			Description: "Local model runtime used for extraction",
		},
	}
}

// pullModel downloads one model under the configured timeout, logging
// progress in ten percent steps.
func (p *Provisioner) pullModel(ctx context.Context, model string) error {
	timeout := time.Duration(p.cfg.Provision.PullTimeoutSeconds) * time.Second
	pullCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pullCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	p.logger.Info("pulling model", logging.String("model", model))
	lastBucket := -1
	return p.models.Pull(pullCtx, model, func(progress ollama.PullProgress) {
		percent := progress.Percent()
		if percent < 0 {
			p.logger.Debug("model pull status",
				logging.String("model", model),
				logging.String("status", progress.Status))
			return
		}
		bucket := int(percent) / 10
		if bucket == lastBucket {
			return
		}
		lastBucket = bucket
		p.logger.Info("model pull progress",
			logging.String("model", model),
			logging.String("status", progress.Status),
			logging.Float64("percent", percent))
	})
}

// pruneModels removes models recorded as tool-installed that the manifest no
// longer declares. Models never recorded in state are left alone.
func (p *Provisioner) pruneModels(ctx context.Context, recorded, declared, installed []string) []Resource {
	var resources []Resource
	for _, model := range recorded {
		if contains(declared, model, ollama.ModelNamesMatch) {
			continue
		}
		if !contains(installed, model, ollama.ModelNamesMatch) {
			continue
		}
		if err := p.models.Delete(ctx, model); err != nil {
			resources = append(resources, Resource{
				Kind:   "model",
				Name:   model,
				Status: ResourceFailed,
				Detail: fmt.Sprintf("remove: %v", err),
			})
			continue
		}
		p.logger.Info("pruned model", logging.String("model", model))
		resources = append(resources, Resource{Kind: "model", Name: model, Status: ResourceRemoved})
	}
	return resources
}

func (p *Provisioner) availableBinaries(resources []Resource) []string {
	var binaries []string
	for _, resource := range resources {
		if resource.Kind == "binary" && resource.Status == ResourcePresent {
			binaries = append(binaries, resource.Name)
		}
	}
	return binaries
}

// Describe renders one resource for CLI output.
func (r Resource) Describe() string {
	label := fmt.Sprintf("%s %s: %s", r.Kind, r.Name, r.Status)
	if strings.TrimSpace(r.Detail) != "" {
		label = fmt.Sprintf("%s (%s)", label, r.Detail)
	}
	return label
}
