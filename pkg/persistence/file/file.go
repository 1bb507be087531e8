// Package file provides the file-based flow repository: one JSON document
// per flow under <root>/flows/.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/leadkit/blockflow/pkg/models"
	"github.com/leadkit/blockflow/pkg/persistence"
)

const flowsDirPerm = 0o755

// Repository implements persistence.Repository on the file system.
type Repository struct {
	root string
}

// NewRepository creates a flow repository rooted at the given directory.
// A "file://" prefix is tolerated so the data-dir flag can carry a URL.
func NewRepository(root string) *Repository {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Repository{root: cleanRoot}
}

func (r *Repository) flowsDir() string {
	return filepath.Join(r.root, "flows")
}

func (r *Repository) flowPath(id string) string {
	return filepath.Join(r.flowsDir(), id+".json")
}

// Flows returns every stored flow.
func (r *Repository) Flows(ctx context.Context) ([]*models.Flow, error) {
	root := os.DirFS(r.flowsDir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list flow files: %w", err)
	}

	flows := make([]*models.Flow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := strings.TrimSuffix(file, ".json")

		flow, err := r.FlowByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load flow %s: %w", id, err)
		}

		flows = append(flows, flow)
	}

	return flows, nil
}

// SaveFlow writes the flow document, creating the flows directory on first
// use.
func (r *Repository) SaveFlow(_ context.Context, flow *models.Flow) error {
	if err := os.MkdirAll(r.flowsDir(), flowsDirPerm); err != nil {
		return fmt.Errorf("failed to create flows directory: %w", err)
	}

	payload, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode flow %s: %w", flow.ID, err)
	}

	if err := os.WriteFile(r.flowPath(flow.ID), payload, 0o600); err != nil {
		return fmt.Errorf("failed to write flow %s: %w", flow.ID, err)
	}

	return nil
}

// FlowByID loads one flow document.
func (r *Repository) FlowByID(_ context.Context, id string) (*models.Flow, error) {
	payload, err := os.ReadFile(r.flowPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrFlowNotFound
		}

		return nil, fmt.Errorf("failed to read flow %s: %w", id, err)
	}

	var flow models.Flow
	if err := json.Unmarshal(payload, &flow); err != nil {
		return nil, fmt.Errorf("failed to decode flow %s: %w", id, err)
	}

	return &flow, nil
}

// DeleteFlow removes a flow document.
func (r *Repository) DeleteFlow(_ context.Context, id string) error {
	err := os.Remove(r.flowPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.ErrFlowNotFound
		}

		return fmt.Errorf("failed to delete flow %s: %w", id, err)
	}

	return nil
}

// HealthCheck verifies the root directory exists.
func (r *Repository) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(r.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to do for files.
func (r *Repository) Close(_ context.Context) error {
	return nil
}
